package instance

import (
	"os"

	"github.com/bancore/backend/pkg/env"
)

// GetID returns the identifier for this process instance. It prefers the
// BANCORE_INSTANCE_ID variable and falls back to the hostname, which on most
// container platforms is the pod or task name.
func GetID() string {
	if id := env.Get("BANCORE_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}
