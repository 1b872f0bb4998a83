package server

// Route path constants
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthRefresh  = "/auth/refresh"
	RouteAuthRevoke   = "/auth/revoke"
	RouteAuthLogout   = "/auth/logout"

	// User metric Routes
	RouteUsersProfile        = "/users/profile"
	RouteUsersNameStatus     = "/users/name-status"
	RouteUsersVideos         = "/users/get-video"
	RouteUsersFollowersCount = "/users/get-followers-count"
	RouteUsersWallPostCount  = "/users/get-wall-post-count"
	RouteUsersAllInfo        = "/users/get-all-info"

	RouteHealth = "/healthz"
)
