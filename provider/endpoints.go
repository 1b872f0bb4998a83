package provider

import (
	xoauth2 "golang.org/x/oauth2"
)

// Endpoints are the provider URLs the relay talks to.
type Endpoints struct {
	AuthURL    string // browser redirect target
	TokenURL   string // code exchange and refresh
	RevokeURL  string
	LogoutURL  string
	APIBaseURL string // prefix for API method calls, e.g. https://api.vk.com/method
}

// EndpointsForHosts builds the standard VK ID layout for an ID host and an API host.
func EndpointsForHosts(idHost, apiHost string) Endpoints {
	return Endpoints{
		AuthURL:    idHost + "/authorize",
		TokenURL:   idHost + "/oauth2/auth",
		RevokeURL:  idHost + "/oauth2/revoke",
		LogoutURL:  idHost + "/oauth2/logout",
		APIBaseURL: apiHost + "/method",
	}
}

// OAuth2 exposes the authorize and token URLs in x/oauth2 form. Client credentials
// travel in the form body since the relay is a public client.
func (e Endpoints) OAuth2() xoauth2.Endpoint {
	return xoauth2.Endpoint{
		AuthURL:   e.AuthURL,
		TokenURL:  e.TokenURL,
		AuthStyle: xoauth2.AuthStyleInParams,
	}
}
