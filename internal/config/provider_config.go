package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	clientIDVar        = "CLIENT_ID"
	redirectURIVar     = "REDIRECT_URI"
	scopesVar          = "SCOPES"
	idHostVar          = "PROVIDER_ID_HOST"
	apiHostVar         = "PROVIDER_API_HOST"
	apiVersionVar      = "API_VERSION"
	providerTimeoutVar = "PROVIDER_TIMEOUT"
)

type ProviderConfig interface {
	GetClientID() string
	GetRedirectURI() string
	GetScopes() []string
	GetIDHost() string
	GetAPIHost() string
	GetAPIVersion() string
	GetProviderTimeout() time.Duration
}

type Provider struct {
	v *viper.Viper
}

var _ ProviderConfig = Provider{}

func (p Provider) GetClientID() string {
	return p.v.GetString(clientIDVar)
}

func (p Provider) GetRedirectURI() string {
	return p.v.GetString(redirectURIVar)
}

// GetScopes accepts either space or comma separated scope lists.
func (p Provider) GetScopes() []string {
	return strings.FieldsFunc(p.v.GetString(scopesVar), func(r rune) bool {
		return r == ' ' || r == ','
	})
}

func (p Provider) GetIDHost() string {
	return strings.TrimRight(p.v.GetString(idHostVar), "/")
}

func (p Provider) GetAPIHost() string {
	return strings.TrimRight(p.v.GetString(apiHostVar), "/")
}

func (p Provider) GetAPIVersion() string {
	return p.v.GetString(apiVersionVar)
}

// GetProviderTimeout applies to every outbound call. Calls are never retried.
func (p Provider) GetProviderTimeout() time.Duration {
	return p.v.GetDuration(providerTimeoutVar)
}
