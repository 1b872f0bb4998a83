package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/vkid-relay/auth"
	"github.com/jrsteele09/vkid-relay/internal/config"
	"github.com/jrsteele09/vkid-relay/provider"
	"github.com/jrsteele09/vkid-relay/server/authflowrepo"
	"github.com/jrsteele09/vkid-relay/token"
	"github.com/jrsteele09/vkid-relay/users"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	auth        *auth.AuthorizationService
	tokens      *token.Manager
	users       *users.Service
	profilePath string
}

// New wires the relay. The pending store is owned by the caller so its lifetime
// (and sweeper) follows the process rather than the handler.
func New(config config.Config, pending authflowrepo.Repo, client *provider.Client) (*Server, error) {
	authService, err := auth.NewAuthorizationService(pending, client, auth.Settings{
		ClientID:    config.GetClientID(),
		RedirectURI: config.GetRedirectURI(),
		Scopes:      config.GetScopes(),
		Endpoints:   client.Endpoints(),
	})
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authorization service: %w", err)
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		auth:        authService,
		tokens:      token.NewManager(client, config.GetClientID()),
		users:       users.NewService(client),
		profilePath: config.GetProfilePath(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
