package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/studiowebux/apichain/internal/types"
	"go.uber.org/zap"
)

const maxLogs = 1000

// Server is a JSONPlaceholder-compatible HTTP server over a Dataset
type Server struct {
	config     *Config
	dataset    *Dataset
	logger     *zap.Logger
	metrics    *metrics
	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logSeq     uint64
	logsMutex  sync.RWMutex
	notifyCh   chan struct{} // Channel to notify when new log arrives
}

// NewServer creates a fixture server. A nil dataset serves DefaultDataset.
func NewServer(config *Config, dataset *Dataset, logger *zap.Logger) *Server {
	if config == nil {
		config = &Config{Logging: true}
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if dataset == nil {
		dataset = DefaultDataset()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   config,
		dataset:  dataset,
		logger:   logger,
		metrics:  newMetrics(),
		logs:     make([]RequestLog, 0),
		notifyCh: make(chan struct{}, 100), // Buffered channel for notifications
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.injectFaults)

	r.Get("/users", s.listUsers)
	r.Get("/users/{id}", s.getUser)
	r.Get("/posts", s.listPosts)
	r.Post("/posts", s.createPost)
	r.Get("/comments", s.listComments)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("fixture server error", zap.Error(err))
		}
	}()

	s.logger.Info("fixture server started", zap.String("address", s.Address()))
	return nil
}

// Stop stops the fixture server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Address returns the base URL of the running server
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dataset.Users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err == nil {
		for _, u := range s.dataset.Users {
			if u.ID == id {
				writeJSON(w, http.StatusOK, u)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

// listPosts filters by ?userId=; an unparsable id matches nothing
func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("userId")
	posts := make([]types.Post, 0)
	if raw == "" {
		posts = append(posts, s.dataset.Posts...)
	} else if userID, err := strconv.Atoi(raw); err == nil {
		for _, p := range s.dataset.Posts {
			if p.UserID == userID {
				posts = append(posts, p)
			}
		}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("postId")
	comments := make([]types.Comment, 0)
	if raw == "" {
		comments = append(comments, s.dataset.Comments...)
	} else if postID, err := strconv.Atoi(raw); err == nil {
		for _, c := range s.dataset.Comments {
			if c.PostID == postID {
				comments = append(comments, c)
			}
		}
	}
	writeJSON(w, http.StatusOK, comments)
}

// createPost echoes the submitted post with a synthetic id. Nothing is stored,
// so a later listing does not include it.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var draft types.DraftPost
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	post := map[string]any{
		"id":     len(s.dataset.Posts) + 1,
		"title":  draft.Title,
		"body":   draft.Body,
		"userId": draft.UserID,
	}
	writeJSON(w, http.StatusCreated, post)
}

// injectFaults applies the global delay and any fault matching the request
func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay := time.Duration(s.config.Delay) * time.Millisecond
		fault := s.findFault(r.Method, r.URL.Path)
		if fault != nil {
			delay += time.Duration(fault.Delay) * time.Millisecond
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if fault != nil && fault.Status != 0 {
			s.metrics.faults.WithLabelValues(r.Method, r.URL.Path).Inc()
			body := fault.Body
			if body == "" {
				body = "{}"
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(fault.Status)
			_, _ = io.WriteString(w, body)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findFault finds the first fault that matches the method and path
func (s *Server) findFault(method, path string) *Fault {
	for i := range s.config.Faults {
		f := &s.config.Faults[i]
		if strings.EqualFold(f.Method, method) && f.Path == path {
			return f
		}
	}
	return nil
}

// observe records metrics and the request log
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var requestBody string
		if r.Body != nil {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body.Close()
			requestBody = string(bodyBytes)
			r.Body = io.NopCloser(strings.NewReader(requestBody))
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		duration := time.Since(start)

		if route != "/metrics" {
			s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			s.metrics.duration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		}

		s.logger.Debug("fixture request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("duration", duration))

		if s.config.Logging {
			s.logRequest(RequestLog{
				Timestamp: start,
				Method:    r.Method,
				Path:      r.URL.Path,
				Query:     r.URL.RawQuery,
				Headers:   flattenHeaders(r.Header),
				Body:      requestBody,
				Route:     route,
				Status:    status,
				Duration:  duration,
			})
		}
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logSeq++
	log.Seq = s.logSeq
	s.logs = append(s.logs, log)

	// Keep only last maxLogs logs
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	// Notify listeners (non-blocking)
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel full, skip notification
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// LogsSince returns the retained requests logged after seq, oldest first.
// Entries already dropped from the bounded log are not returned.
func (s *Server) LogsSince(seq uint64) []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	i := sort.Search(len(s.logs), func(i int) bool { return s.logs[i].Seq > seq })
	logs := make([]RequestLog, len(s.logs)-i)
	copy(logs, s.logs[i:])
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// flattenHeaders converts http.Header to map[string]string (first value only)
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}
