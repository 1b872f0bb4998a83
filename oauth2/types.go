package oauth2

// ResponseType represents the OAuth 2.0 response type requested at the authorize endpoint.
type ResponseType string

const (
	// CodeResponseType requests an authorization code.
	// Used in: Authorization Code Flow with PKCE
	// Example: https://id.vk.com/authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Provider validates: SHA256(code_verifier sent at the token endpoint) == code_challenge
	// The only method this relay ever sends.
	CodeMethodTypeS256 CodeMethodType = "S256"
)

// GrantType represents the OAuth 2.0 grant type used at the provider token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Request includes: code, code_verifier, redirect_uri, client_id, device_id, state
	// Returns: access_token, refresh_token, id_token, echoed state
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenCodeGrant exchanges a refresh token for a new token pair.
	// Request includes: refresh_token, client_id, device_id, state
	// Returns: new access_token and rotated refresh_token, echoed state
	RefreshTokenCodeGrant GrantType = "refresh_token"
)

// AckSuccess is the value of the "response" field when the provider accepted a
// revoke or logout request.
const AckSuccess = 1
