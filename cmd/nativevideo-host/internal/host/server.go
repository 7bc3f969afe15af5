package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/go-drift/nativevideo/pkg/config"
	"github.com/go-drift/nativevideo/pkg/logging"
	"github.com/go-drift/nativevideo/pkg/platform"
)

// HeaderHostVersion carries the calling host's version.
const HeaderHostVersion = "X-Host-Version"

const maxBodyBytes = 1 << 20

// Runner executes fn on the plugin's main context and waits for it.
// [platform.Looper] implements it.
type Runner interface {
	Sync(fn func()) bool
}

// Server serves the plugin channels over HTTP.
type Server struct {
	run     Runner
	bus     *Bus
	cfg     atomic.Pointer[config.Config]
	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewServer creates a server. Channel handlers run through run.
func NewServer(cfg *config.Config, run Runner, bus *Bus) *Server {
	s := &Server{
		run:     run,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(cfg.Host.CommandRate), cfg.Host.CommandBurst),
		log:     logging.For("host"),
	}
	s.cfg.Store(cfg)
	return s
}

// SetConfig swaps the configuration used for version checks and rate
// limiting.
func (s *Server) SetConfig(cfg *config.Config) {
	s.cfg.Store(cfg)
	s.limiter.SetLimit(rate.Limit(cfg.Host.CommandRate))
	s.limiter.SetBurst(cfg.Host.CommandBurst)
}

// Router builds the HTTP routes. Channel names may contain slashes, so
// they are taken from the wildcard tail: method calls go to
// POST /channels/<channel>/<method> and event streams to GET /events/<channel>.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthz)
	r.Group(func(r chi.Router) {
		r.Use(s.checkVersion)
		r.With(s.rateLimit).Post("/channels/*", s.methodCall)
		r.Get("/events/*", s.events)
	})
	return r
}

type callError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type callResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *callError      `json:"error,omitempty"`
}

func (s *Server) methodCall(w http.ResponseWriter, r *http.Request) {
	channel, method, ok := splitMethodPath(chi.URLParam(r, "*"))
	if !ok {
		writeJSON(w, http.StatusNotFound, callResponse{Error: &callError{
			Code: "NOT_FOUND", Message: "expected /channels/<channel>/<method>",
		}})
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, callResponse{Error: &callError{
			Code: platform.CodeInvalidArgument, Message: err.Error(),
		}})
		return
	}

	var out []byte
	var callErr error
	if !s.run.Sync(func() {
		out, callErr = platform.HandleMethodCall(channel, method, body)
	}) {
		writeJSON(w, http.StatusServiceUnavailable, callResponse{Error: &callError{
			Code: platform.CodeInternal, Message: "plugin is shutting down",
		}})
		return
	}

	if callErr != nil {
		status, ce := statusFor(callErr)
		writeJSON(w, status, callResponse{Error: &callError{Code: ce.Code, Message: ce.Message}})
		return
	}
	if len(out) == 0 {
		out = []byte("null")
	}
	writeJSON(w, http.StatusOK, callResponse{Result: out})
}

// splitMethodPath splits "<channel>/<method>" at the last slash.
func splitMethodPath(tail string) (channel, method string, ok bool) {
	i := strings.LastIndex(tail, "/")
	if i <= 0 || i == len(tail)-1 {
		return "", "", false
	}
	return tail[:i], tail[i+1:], true
}

func statusFor(err error) (int, *platform.ChannelError) {
	if errors.Is(err, platform.ErrChannelNotFound) {
		return http.StatusNotFound, platform.NewChannelError("NOT_FOUND", err.Error())
	}
	ce := platform.AsChannelError(err)
	switch ce.Code {
	case platform.CodeInvalidArgument:
		return http.StatusBadRequest, ce
	case platform.CodeNotImplemented:
		return http.StatusNotImplemented, ce
	default:
		return http.StatusInternalServerError, ce
	}
}

// events streams an event channel as SSE. The first subscriber starts the
// plugin-side listener and the last one to leave cancels it.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	channel := chi.URLParam(r, "*")
	if channel == "" {
		http.Error(w, "missing event channel", http.StatusNotFound)
		return
	}

	// Bus membership and listen/cancel change together on the main
	// context, so a leaving last subscriber cannot cancel a newcomer.
	id := uuid.NewString()
	var (
		ch        <-chan Message
		listenErr error
	)
	if !s.run.Sync(func() {
		var first bool
		ch, first = s.bus.Subscribe(channel, id)
		if first {
			listenErr = platform.HandleListen(channel)
		}
	}) {
		http.Error(w, "plugin is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.unsubscribe(channel, id)

	if listenErr != nil {
		http.Error(w, listenErr.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log := s.log.WithFields(logrus.Fields{"channel": channel, "subscriber": id})
	log.Debug("subscriber attached")
	defer log.Debug("subscriber detached")

	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, flusher, m)
			if m.Kind == KindEnd {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) unsubscribe(channel, id string) {
	if s.run.Sync(func() {
		if s.bus.Unsubscribe(channel, id) {
			_ = platform.HandleCancel(channel)
		}
	}) {
		return
	}
	s.bus.Unsubscribe(channel, id)
}

func writeSSE(w io.Writer, flusher http.Flusher, m Message) {
	if m.Kind != KindEvent {
		_, _ = fmt.Fprintf(w, "event: %s\n", m.Kind)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", m.Data)
	flusher.Flush()
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) checkVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.cfg.Load().CheckHostVersion(r.Header.Get(HeaderHostVersion)); err != nil {
			writeJSON(w, http.StatusUpgradeRequired, callResponse{Error: &callError{
				Code: "HOST_VERSION", Message: err.Error(),
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, callResponse{Error: &callError{
				Code: "RATE_LIMITED", Message: "too many commands",
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"request":  middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
