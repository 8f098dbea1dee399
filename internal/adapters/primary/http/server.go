package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// Server serves a live preview of one deck
type Server struct {
	server   *http.Server
	listener net.Listener
	hub      *Hub
	renderer ports.DeckRenderer
	config   *entities.ServerConfig
	limiter  *clientLimiter
	metrics  ports.PreviewMetrics
	logger   *slog.Logger

	mu       sync.RWMutex
	deck     *entities.Deck
	reports  []*entities.Report
	buildErr error
	running  bool
	cancel   context.CancelFunc
}

var _ ports.PreviewServer = (*Server)(nil)

// NewServer creates a preview server; config must not be nil
func NewServer(renderer ports.DeckRenderer, config *entities.ServerConfig, logger *slog.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("adapter", "http")
	return &Server{
		renderer: renderer,
		hub:      NewHub(logger),
		config:   config,
		limiter:  newClientLimiter(clientRate, clientBurst),
		logger:   logger,
	}
}

// SetDeck replaces the deck being previewed
func (s *Server) SetDeck(deck *entities.Deck, reports []*entities.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deck = deck
	s.reports = reports
	s.buildErr = nil
}

// SetBuildError records a failed rebuild
func (s *Server) SetBuildError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildErr = err
}

// SetMetrics enables request counting and the /api/metrics endpoint. It
// must be called before Start.
func (s *Server) SetMetrics(metrics ports.PreviewMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// Deck returns the deck being previewed, or nil
func (s *Server) Deck() *entities.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// snapshot returns the current deck, reports and build error together
func (s *Server) snapshot() (*entities.Deck, []*entities.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck, s.reports, s.buildErr
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
	if err != nil {
		return fmt.Errorf("listening on %s:%d: %w", host, port, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.hub = NewHub(s.logger)
	go s.hub.Run(runCtx)

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.listener = listener
	s.cancel = cancel
	s.running = true

	srv := s.server
	go func() {
		s.logger.Info("HTTP server starting", slog.String("addr", listener.Addr().String()))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// currentHub returns the hub of the current run
func (s *Server) currentHub() *Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hub
}

// Addr returns the listening address while the server runs
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.cancel()
	s.running = false
	s.listener = nil
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.hub.Publish(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the routed handler wrapped in middleware and CORS
func (s *Server) Handler() http.Handler {
	router := s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(router)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/slides", s.handleSlides).Methods(http.MethodGet)
	api.HandleFunc("/slides/{index:[0-9]+}", s.handleSlide).Methods(http.MethodGet)
	api.HandleFunc("/slots", s.handleSlots).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	}

	router.HandleFunc("/media/{slide:[0-9]+}/{shape:[0-9]+}", s.handleMedia).Methods(http.MethodGet)
	router.HandleFunc("/", s.handlePreview).Methods(http.MethodGet)

	// subrouters resolve method mismatches themselves
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	router.MethodNotAllowedHandler = methodNotAllowed
	api.MethodNotAllowedHandler = methodNotAllowed

	// outermost first: recovery, access log, rate limit, security headers
	var handler http.Handler = securityHeaders(router)
	handler = s.limiter.middleware(handler)
	handler = accessLog(handler, s.logger, s.metrics)
	return recoverPanics(handler, s.logger)
}
