package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zestacademy/zestcompilers/auth"
	"github.com/zestacademy/zestcompilers/cookies"
	"github.com/zestacademy/zestcompilers/execution"
	"github.com/zestacademy/zestcompilers/internal/config"
	"github.com/zestacademy/zestcompilers/token/jwt"
	"github.com/zestacademy/zestcompilers/token/keys"
)

type Server struct {
	production bool
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	httpClient *http.Client
	auth       *auth.Service
	jar        *cookies.Jar
	executor   *execution.Client
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithHTTPClient sets the client used for calls to the auth server and the
// execution API.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.httpClient = client
	}
}

// New wires the auth flow and the compile proxy. ctx bounds background work
// such as key set refreshes and should live as long as the server.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		production: cfg.IsProduction(),
		mux:        http.NewServeMux(),
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.GetHTTPTimeout()},
		jar:        cookies.NewJar(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}

	verifier, err := s.newVerifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token verifier: %w", err)
	}

	validator := jwt.NewValidator(cfg.GetAuthServerURL(), cfg.GetClientID(), verifier)
	s.auth = auth.NewService(cfg, validator, auth.WithHTTPClient(s.httpClient))
	s.executor = execution.NewClient(cfg, s.httpClient)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) newVerifier(ctx context.Context) (keys.Verifier, error) {
	opts := keys.Options{
		Mode:       s.config.GetTokenVerification(),
		JWKSURL:    s.config.GetJWKSURL(),
		HTTPClient: s.httpClient,
	}
	if opts.Mode == keys.ModeHMAC {
		secret, err := s.config.JWTSecret()
		if err != nil {
			return nil, err
		}
		opts.HMACSecret = secret
	}
	return keys.NewVerifier(ctx, opts)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.production {
		return // Skip logging in production
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
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
