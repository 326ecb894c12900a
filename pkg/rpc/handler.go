package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/service"
)

const maxBodyBytes int64 = 1 << 20

// UnknownMethod is the name observers see for calls to unregistered methods.
const UnknownMethod = "unknown"

// ServiceFunc builds the per-call service for an incoming request.
type ServiceFunc func(r *http.Request) (*service.Service, error)

// Observer is notified after every dispatched call.
type Observer func(method string, elapsed time.Duration, err error)

// Handler serves the registry as a JSON-RPC 2.0 endpoint.
type Handler struct {
	registry *Registry
	services ServiceFunc
	limiter  *keyLimiter
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRateLimit enables per-caller rate limiting.
func WithRateLimit(cfg RateLimit) HandlerOption {
	return func(h *Handler) {
		h.limiter = newKeyLimiter(cfg)
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver registers a callback run after each call.
func WithObserver(o Observer) HandlerOption {
	return func(h *Handler) {
		h.observer = o
	}
}

// NewHandler creates an endpoint for reg. A nil services func yields an
// anonymous service for every call.
func NewHandler(reg *Registry, services ServiceFunc, opts ...HandlerOption) *Handler {
	h := &Handler{
		registry: reg,
		services: services,
		logger:   logger.NewNope(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.services == nil {
		h.services = func(*http.Request) (*service.Service, error) {
			return service.New(nil, h.logger), nil
		}
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeResponse(w, response{Error: &Error{Code: CodeParseError, Message: "parse error"}})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeInvalidRequest(w, req.ID)
		return
	}
	if req.JSONRPC != version || req.Method == "" {
		writeInvalidRequest(w, req.ID)
		return
	}

	params, ok := decodeParams(req.Params)
	if !ok {
		writeResponse(w, response{ID: req.ID, Error: &Error{Code: CodeInvalidParams, Message: "params must be an array"}})
		return
	}

	svc, err := h.services(r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "rpc service setup failed", "method", req.Method, "error", err)
		writeResponse(w, response{ID: req.ID, Error: &Error{Code: CodeInternal, Message: "internal error"}})
		return
	}

	if !h.limiter.allow(limitKey(r, svc), h.now()) {
		h.logger.WarnContext(r.Context(), "rpc rate limited", "method", req.Method)
		h.observe(h.methodLabel(req.Method), 0, ErrRateLimited)
		writeResponse(w, response{ID: req.ID, Error: &Error{Code: CodeRateLimited, Message: "rate limited"}})
		return
	}

	started := h.now()
	result, err := h.registry.Invoke(r.Context(), svc, req.Method, params)
	elapsed := h.now().Sub(started)
	h.observe(h.methodLabel(req.Method), elapsed, err)

	if err != nil {
		rpcErr := toError(err)
		h.logger.ErrorContext(r.Context(), "rpc failed",
			"method", req.Method,
			"rpc_code", rpcErr.Code,
			"latency_ms", elapsed.Milliseconds(),
			"error", err,
		)
		writeResponse(w, response{ID: req.ID, Error: rpcErr})
		return
	}

	h.logger.DebugContext(r.Context(), "rpc response", "method", req.Method, "latency_ms", elapsed.Milliseconds())
	writeResponse(w, response{ID: req.ID, Result: json.RawMessage(result)})
}

// methodLabel keeps client-supplied names out of observer labels.
func (h *Handler) methodLabel(method string) string {
	if h.registry.Has(method) {
		return method
	}
	return UnknownMethod
}

func (h *Handler) observe(method string, elapsed time.Duration, err error) {
	if h.observer != nil {
		h.observer(method, elapsed, err)
	}
}

func writeResponse(w http.ResponseWriter, resp response) {
	resp.JSONRPC = version
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeInvalidRequest(w http.ResponseWriter, id json.RawMessage) {
	writeResponse(w, response{ID: id, Error: &Error{Code: CodeInvalidRequest, Message: "invalid request"}})
}
