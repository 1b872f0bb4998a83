package sessions

import (
	"net/http"

	"github.com/jrsteele09/vkid-relay/oauth2"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	DeviceIDCookie     = "device_id"
)

// Session is what the client carries between requests. There is no server side copy.
// Any field may be empty when the client never logged in or the cookies were cleared.
type Session struct {
	AccessToken  string
	RefreshToken string
	DeviceID     string
}

// Authenticated reports whether the session can be used against the provider API.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Issue hands a fresh login to the client as three HttpOnly cookies.
func Issue(w http.ResponseWriter, r *http.Request, tokens oauth2.TokenSet, deviceID string) {
	setCookie(w, r, AccessTokenCookie, tokens.AccessToken, 0)
	setCookie(w, r, RefreshTokenCookie, tokens.RefreshToken, 0)
	setCookie(w, r, DeviceIDCookie, deviceID, 0)
}

// Update replaces the token pair after a refresh. The device id is unchanged.
func Update(w http.ResponseWriter, r *http.Request, tokens oauth2.TokenSet) {
	setCookie(w, r, AccessTokenCookie, tokens.AccessToken, 0)
	setCookie(w, r, RefreshTokenCookie, tokens.RefreshToken, 0)
}

// Clear expires every session cookie.
func Clear(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, DeviceIDCookie} {
		setCookie(w, r, name, "", -1)
	}
}

// Read extracts whatever session cookies the request carries.
func Read(r *http.Request) Session {
	return Session{
		AccessToken:  cookieValue(r, AccessTokenCookie),
		RefreshToken: cookieValue(r, RefreshTokenCookie),
		DeviceID:     cookieValue(r, DeviceIDCookie),
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
