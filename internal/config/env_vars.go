package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	profilePathVar = "PROFILE_PATH"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := strings.TrimSpace(e.v.GetString(portEnvVar))
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameVar)
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.v.GetString(envVar))
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelVar)
}

// GetProfilePath is where the browser lands after a successful login.
func (e EnvVars) GetProfilePath() string {
	return e.v.GetString(profilePathVar)
}
