package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// fieldPolicy rewrites structured log fields before they reach zap. Credentials of
// icecast and liquidsoap are dropped; listener addresses are replaced by a salted digest.
type fieldPolicy struct {
	once    sync.Once
	off     bool
	salt    string
	secrets []string
	hashed  []string
}

var fields = &fieldPolicy{
	secrets: []string{"password", "secret", "token", "authorization", "api_key", "credentials", "dj_pass"},
	hashed:  []string{"client_ip", "listener_ip", "remote_addr"},
}

func (p *fieldPolicy) load() {
	p.once.Do(func() {
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			p.off = true
		}
		p.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
}

func (p *fieldPolicy) sanitize(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	if p.load(); p.off {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := stringify(kv[i])
		out = append(out, key, p.value(strings.ToLower(key), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (p *fieldPolicy) value(key string, val interface{}) interface{} {
	if key == "" {
		return val
	}
	if containsAny(key, p.secrets) {
		return redacted
	}
	if containsAny(key, p.hashed) {
		return p.digest(stringify(val))
	}
	if m, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = p.value(strings.ToLower(strings.TrimSpace(k)), v)
		}
		return out
	}
	return val
}

func (p *fieldPolicy) digest(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(key string, parts []string) bool {
	for _, part := range parts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
