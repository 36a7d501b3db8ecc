package instance

import "os"

// GetID identifies this server instance in logs. Deployments set
// INSTANCE_ID per replica; the hostname stands in otherwise.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "api-0"
}
