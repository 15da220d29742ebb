// Package mock is a stand-in for the vitals and auth backends. It serves
// simulated vitals, an in-memory account registry and an optional camera
// frame feed so the client can run end to end without the real services.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
)

const maxBodyBytes = 1 << 20

type Options struct {
	// Feed serves /camera/ws when non-nil.
	Feed    *Feed
	Metrics *metrics.Metrics
	Seed    int64
	// BcryptCost 0 means bcrypt.DefaultCost.
	BcryptCost int
	// FailProcess makes /process answer 500, for exercising the error path.
	FailProcess bool
}

type Server struct {
	users       *Users
	estimator   *Estimator
	feed        *Feed
	metrics     *metrics.Metrics
	failProcess bool
	upgrader    websocket.Upgrader
}

type processResponse struct {
	Status string `json:"status"`
	client.Vitals
}

func NewServer(opts Options) *Server {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Server{
		users:       NewUsers(opts.BcryptCost),
		estimator:   NewEstimator(seed),
		feed:        opts.Feed,
		metrics:     opts.Metrics,
		failProcess: opts.FailProcess,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

func (s *Server) Users() *Users { return s.users }

// SetupRoutes registers every endpoint on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("/process", s.instrument("/process", http.HandlerFunc(s.handleProcess)))
	mux.Handle("/signup", s.instrument("/signup", http.HandlerFunc(s.handleSignup)))
	mux.Handle("/login", s.instrument("/login", http.HandlerFunc(s.handleLogin)))
	if s.feed != nil {
		mux.HandleFunc("/camera/ws", s.handleCameraWS)
	}
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}

// Handler returns the full route set wrapped in security headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.feed != nil {
		go s.feed.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock", "listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("mock", "server stopped")
		return nil
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("mock", "encode response: %v", err)
	}
}

func writeAuth(w http.ResponseWriter, code int, status, message string) {
	writeJSON(w, code, client.AuthResponse{Status: status, Message: message})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.failProcess {
		writeAuth(w, http.StatusInternalServerError, client.StatusFailed, "Models are not loaded on the server.")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeAuth(w, http.StatusBadRequest, client.StatusFailed, "Could not read request body.")
		return
	}

	var req client.ProcessRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeAuth(w, http.StatusBadRequest, client.StatusFailed, "Invalid request body.")
			return
		}
	}

	v := s.estimator.Estimate(req.RawSignal)
	logger.Info("mock", "process: %d samples -> hr=%s", len(req.RawSignal), client.FormatNumber(v.HeartRate))
	writeJSON(w, http.StatusOK, processResponse{Status: client.StatusSuccess, Vitals: v})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req client.SignupRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeAuth(w, http.StatusBadRequest, client.StatusFailed, "Invalid request body.")
		return
	}

	switch err := s.users.Register(req); {
	case errors.Is(err, ErrMissingFields):
		writeAuth(w, http.StatusBadRequest, client.StatusFailed, "Missing required fields")
	case errors.Is(err, ErrEmailTaken):
		writeAuth(w, http.StatusConflict, client.StatusFailed, "Email already registered")
	case err != nil:
		logger.Error("mock", "register: %v", err)
		writeAuth(w, http.StatusInternalServerError, client.StatusFailed, "")
	default:
		logger.Info("mock", "registered %s", normalizeEmail(req.Email))
		writeAuth(w, http.StatusOK, client.StatusSuccess, "User registered successfully")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req client.LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeAuth(w, http.StatusBadRequest, client.StatusFailed, "Invalid request body.")
		return
	}

	if !s.users.Authenticate(req.Email, req.Password) {
		writeAuth(w, http.StatusUnauthorized, client.StatusFailed, "Invalid email or password")
		return
	}
	writeAuth(w, http.StatusOK, client.StatusSuccess, "Login successful")
}

func (s *Server) handleCameraWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("mock", "ws upgrade error: %v", err)
		return
	}

	logger.Info("mock", "camera client connected: %s", r.RemoteAddr)
	c := s.feed.Add(conn)

	go func() {
		defer func() {
			s.feed.Remove(c)
			logger.Info("mock", "camera client disconnected: %s", r.RemoteAddr)
		}()
		// Reading drives gorilla's ping handler and detects close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveMock(endpoint, rec.code)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'")
		next.ServeHTTP(w, r)
	})
}
