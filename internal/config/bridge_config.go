package config

import "time"

const (
	DefaultPollInterval = 10 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
)

type Bridge struct{}

var _ BridgeConfig = Bridge{}

// GetPollInterval is the fallback polling period used when the host offers no push subscription
func (Bridge) GetPollInterval() time.Duration {
	return GetEnvDuration("BRIDGE_POLL_INTERVAL", DefaultPollInterval)
}
