package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/immoflow/accessgate/gate"
	"github.com/immoflow/accessgate/internal/config"
	"github.com/immoflow/accessgate/provision"
	"github.com/immoflow/accessgate/session"
)

// Deps holds the collaborators the HTTP surface is built from.
type Deps struct {
	Gate        *gate.Gate
	Resolver    gate.RoleResolver
	Verifier    session.Verifier
	Identity    session.Provider
	Provisioner *provision.Service
	Logger      zerolog.Logger
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	gate        *gate.Gate
	resolver    gate.RoleResolver
	verifier    session.Verifier
	identity    session.Provider
	provisioner *provision.Service
	log         zerolog.Logger
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Gate == nil {
		return nil, errors.New("[server.New] gate is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("[server.New] resolver is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("[server.New] session verifier is required")
	}
	if deps.Identity == nil {
		return nil, errors.New("[server.New] identity provider is required")
	}
	if deps.Provisioner == nil {
		return nil, errors.New("[server.New] provisioner is required")
	}

	s := &Server{
		env:         cfg.GetEnv(),
		mux:         http.NewServeMux(),
		config:      cfg,
		gate:        deps.Gate,
		resolver:    deps.Resolver,
		verifier:    deps.Verifier,
		identity:    deps.Identity,
		provisioner: deps.Provisioner,
		log:         deps.Logger,
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
	for _, route := range s.routes {
		s.log.Debug().Str("route", route).Msg("registered")
	}
}
