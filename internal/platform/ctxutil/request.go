// Package ctxutil carries per-request identity through context.Context.
package ctxutil

import "context"

type requestKey struct{}

// Request identifies one API call. Subject stays empty until the caller is authenticated.
type Request struct {
	TraceID   string
	RequestID string
	Subject   string
}

func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

func RequestFrom(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return Request{}, false
	}
	r, ok := ctx.Value(requestKey{}).(Request)
	return r, ok
}

// WithSubject records the authenticated caller, keeping any ids already attached.
func WithSubject(ctx context.Context, subject string) context.Context {
	r, _ := RequestFrom(ctx)
	r.Subject = subject
	return WithRequest(ctx, r)
}

// LogFields returns the non-empty request ids as logger key/value pairs.
func LogFields(ctx context.Context) []interface{} {
	r, ok := RequestFrom(ctx)
	if !ok {
		return nil
	}
	var out []interface{}
	if r.TraceID != "" {
		out = append(out, "trace_id", r.TraceID)
	}
	if r.RequestID != "" {
		out = append(out, "request_id", r.RequestID)
	}
	if r.Subject != "" {
		out = append(out, "subject", r.Subject)
	}
	return out
}
