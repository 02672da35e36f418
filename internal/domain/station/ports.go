package station

import "fmt"

// Port fields checked for collisions between stations.
const (
	PortFieldFrontend = "frontend_config.port"
	PortFieldDJ       = "backend_config.dj_port"
	PortFieldTelnet   = "backend_config.telnet_port"
)

// PortViolation reports a configured port already claimed by another station.
type PortViolation struct {
	Field   string `json:"field"`
	Port    string `json:"port"`
	Message string `json:"message"`
}

func NewPortViolation(field, port string) PortViolation {
	return PortViolation{
		Field:   field,
		Port:    port,
		Message: fmt.Sprintf("The port %s is in use by another station.", port),
	}
}
