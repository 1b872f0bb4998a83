package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	CorsConfig
	ProviderConfig
	SecurityConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetProfilePath() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Provider
	Security
	Store
}

// Load reads an optional .env style file, then the environment. Env vars override the file.
// A missing file is ignored so containers can rely on the environment alone.
func Load(file string) (Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()
	setDefaults(v)

	c := New(v)
	if strings.TrimSpace(c.GetClientID()) == "" {
		return nil, errors.New("config: CLIENT_ID must be set")
	}
	if c.GetProviderTimeout() <= 0 {
		return nil, errors.New("config: PROVIDER_TIMEOUT must be positive")
	}
	if c.GetPendingAuthTTL() <= 0 {
		return nil, errors.New("config: PENDING_AUTH_TTL must be positive")
	}
	return c, nil
}

// New wraps an already populated viper instance. Defaults are applied.
func New(v *viper.Viper) Config {
	setDefaults(v)
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Cors:     Cors{v: v},
		Provider: Provider{v: v},
		Security: Security{v: v},
		Store:    Store{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portEnvVar, "8080")
	v.SetDefault(appNameVar, "VK ID Relay")
	v.SetDefault(envVar, "DEV")
	v.SetDefault(logLevelVar, "info")
	v.SetDefault(profilePathVar, "/users/profile")

	v.SetDefault(allowedOriginsVar, "")

	v.SetDefault(redirectURIVar, "http://localhost/auth/callback")
	v.SetDefault(scopesVar, "status wall friends video email")
	v.SetDefault(idHostVar, "https://id.vk.com")
	v.SetDefault(apiHostVar, "https://api.vk.com")
	v.SetDefault(apiVersionVar, "5.199")
	v.SetDefault(providerTimeoutVar, "5s")

	v.SetDefault(pendingAuthTTLVar, "10m")
	v.SetDefault(pendingAuthSweepVar, "1m")

	v.SetDefault(redisAddrVar, "")
	v.SetDefault(redisPasswordVar, "")
	v.SetDefault(redisDBVar, 0)
}
