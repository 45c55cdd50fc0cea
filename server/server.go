package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-mfe-bridge/apiclient"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/jrsteele09/go-mfe-bridge/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BridgeState is the consumer side the dev-host endpoints read.
type BridgeState interface {
	GetState() hostdata.BridgeData
	RefreshState()
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time

	publisher *hostenv.Publisher
	bridge    BridgeState
	api       *apiclient.Client
}

// Option configures a Server.
type Option func(*Server)

// WithPublisher enables POST /api/host-data.
func WithPublisher(p *hostenv.Publisher) Option {
	return func(s *Server) {
		s.publisher = p
	}
}

// WithBridge enables the host-data read and refresh endpoints.
func WithBridge(b BridgeState) Option {
	return func(s *Server) {
		s.bridge = b
	}
}

// WithAPIClient enables the credential and policy endpoints.
func WithAPIClient(c *apiclient.Client) Option {
	return func(s *Server) {
		s.api = c
	}
}

// WithHTTPClient sets the client used for upstream proxy calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.httpClient = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(cfg config.Config, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	s := &Server{
		mux:        http.NewServeMux(),
		config:     cfg,
		httpClient: http.DefaultClient,
		logger:     log.Logger,
		now:        time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env = cfg.GetEnv()

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

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	s.logger.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
