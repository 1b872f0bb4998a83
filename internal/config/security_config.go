package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	pendingAuthTTLVar   = "PENDING_AUTH_TTL"
	pendingAuthSweepVar = "PENDING_AUTH_SWEEP_INTERVAL"
)

type SecurityConfig interface {
	GetPendingAuthTTL() time.Duration
	GetPendingAuthSweepInterval() time.Duration
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetPendingAuthTTL bounds how long an abandoned login keeps its verifier around.
func (s Security) GetPendingAuthTTL() time.Duration {
	return s.v.GetDuration(pendingAuthTTLVar)
}

func (s Security) GetPendingAuthSweepInterval() time.Duration {
	d := s.v.GetDuration(pendingAuthSweepVar)
	if d <= 0 {
		return time.Minute
	}
	return d
}
