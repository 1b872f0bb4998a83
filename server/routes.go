package server

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthRevoke, ChainMiddleware(s.RevokeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUsersProfile, ChainMiddleware(s.userMetricHandler(s.users.Profile), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUsersNameStatus, ChainMiddleware(s.userMetricHandler(s.users.NameStatus), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUsersVideos, ChainMiddleware(s.userMetricHandler(s.users.Videos), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUsersFollowersCount, ChainMiddleware(s.userMetricHandler(s.users.FollowersCount), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUsersWallPostCount, ChainMiddleware(s.userMetricHandler(s.users.WallPostCount), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUsersAllInfo, ChainMiddleware(s.AllInfoHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}
