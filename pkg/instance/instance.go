package instance

import "github.com/angelmondragon/tillpoint/pkg/env"

// GetID names this process in logs and rate limit keys. An explicit
// TILLPOINT_INSTANCE_ID wins over platform provided names.
func GetID() string {
	return env.First("local", "TILLPOINT_INSTANCE_ID", "DYNO", "HOSTNAME")
}
