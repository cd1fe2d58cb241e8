package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/home-affordability/internal/cache"
	"github.com/iwvelando/home-affordability/internal/metrics"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Options configures the handler. Zero values select defaults.
type Options struct {
	Resolver       *eligibility.Resolver
	Cache          cache.Cache
	CacheTTL       time.Duration
	CacheKeyPrefix string
	MaxUploadSize  int64
	Version        string
}

type handler struct {
	logger        *zap.Logger
	resolver      *eligibility.Resolver
	cache         cache.Cache
	cacheTTL      time.Duration
	keyPrefix     string
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the affordability API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{
		logger:        logger,
		resolver:      opts.Resolver,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		keyPrefix:     opts.CacheKeyPrefix,
		maxUploadSize: opts.MaxUploadSize,
		version:       strings.TrimSpace(opts.Version),
	}
	if h.resolver == nil {
		h.resolver = eligibility.NewResolver(logger, nil, nil)
	}
	if h.cache == nil {
		h.cache = cache.Nop{}
	}
	if h.cacheTTL <= 0 {
		h.cacheTTL = constants.DefaultCacheTTLSeconds * time.Second
	}
	if h.keyPrefix == "" {
		h.keyPrefix = constants.DefaultCacheKeyPrefix
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/quote", h.instrument("/api/quote", h.handleQuote))
	mux.HandleFunc("/api/evaluate", h.instrument("/api/evaluate", h.handleEvaluate))
	mux.HandleFunc("/api/evaluate/all", h.instrument("/api/evaluate/all", h.handleEvaluateAll))

	// Read-only program metadata
	mux.HandleFunc("/api/formulas", h.instrument("/api/formulas", h.handleFormulas))
	mux.HandleFunc("/api/limits", h.instrument("/api/limits", h.handleLimits))
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type quoteRequest struct {
	Buyer loans.Buyer `json:"buyer"`
	// Percentages, e.g. 10 for 10%.
	DownPayment      float64 `json:"downPayment"`
	SellerConcession float64 `json:"sellerConcession"`
}

type quoteResponse struct {
	Quote loans.Quote `json:"quote"`
	LTV   float64     `json:"ltv"`
}

type evaluateAllRequest struct {
	Buyer loans.Buyer `json:"buyer"`
	Units int         `json:"units"`
}

type evaluateAllResponse struct {
	Results  []eligibility.Result `json:"results"`
	Duration string               `json:"duration"`
}

type limitsEntry struct {
	Units int `json:"units"`
	eligibility.Limits
	MaxLoanLimit float64 `json:"maxLoanLimit"`
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuote"
	var req quoteRequest
	if !h.decode(w, r, quoteSchema, &req, op) {
		return
	}

	quote, err := loans.Compute(req.Buyer.Clamp().Inputs(
		mathutil.ToFraction(req.DownPayment),
		mathutil.ToFraction(req.SellerConcession),
	))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, quoteResponse{Quote: quote, LTV: quote.LTV()})
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	var req eligibility.Request
	if !h.decode(w, r, evaluateSchema, &req, op) {
		return
	}
	req.Buyer = req.Buyer.Clamp()

	h.cached(r.Context(), w, "evaluate", req, op, func() (interface{}, error) {
		quote, verdict, err := h.resolver.Evaluate(req)
		if err != nil {
			return nil, err
		}
		formula, _ := h.resolver.Catalog().Lookup(req.FormulaID)
		observe(formula, verdict)
		return eligibility.Result{Formula: formula, Quote: quote, Verdict: verdict}, nil
	})
}

func (h *handler) handleEvaluateAll(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluateAll"
	var req evaluateAllRequest
	if !h.decode(w, r, evaluateAllSchema, &req, op) {
		return
	}
	req.Buyer = req.Buyer.Clamp()

	h.cached(r.Context(), w, "evaluate-all", req, op, func() (interface{}, error) {
		start := time.Now()
		results, err := h.resolver.EvaluateAll(r.Context(), req.Buyer, req.Units)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			observe(result.Formula, result.Verdict)
		}

		elapsed := time.Since(start)
		h.logger.Info("evaluated catalog",
			zap.String("op", op),
			zap.Int("formulas", len(results)),
			zap.Duration("duration", elapsed),
		)
		return evaluateAllResponse{Results: results, Duration: elapsed.String()}, nil
	})
}

func (h *handler) handleFormulas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]eligibility.Formula{
		"formulas": h.resolver.Catalog().Formulas(),
	})
}

func (h *handler) handleLimits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	table := h.resolver.Limits()
	entries := make([]limitsEntry, 0, len(table.Units()))
	for _, units := range table.Units() {
		l, _ := table.Lookup(units)
		entries = append(entries, limitsEntry{Units: units, Limits: l, MaxLoanLimit: l.MaxLoanLimit()})
	}
	h.writeJSON(w, http.StatusOK, map[string][]limitsEntry{"limits": entries})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a POST body, validates it against schema and unmarshals it
// into dst. It writes the error response itself and reports whether the
// caller should continue.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return false
	}

	if err := validateBody(schema, body); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// cached answers from the evaluation cache when it can, otherwise computes
// the response and stores it. Only successful responses are cached.
func (h *handler) cached(ctx context.Context, w http.ResponseWriter, route string, req interface{}, op string, compute func() (interface{}, error)) {
	canonical, err := json.Marshal(req)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode cache key: %v", err), op)
		return
	}
	key := cache.Key(h.keyPrefix, route, canonical)

	if body, err := h.cache.Get(ctx, key); err == nil {
		metrics.ObserveCache(true)
		h.writeRaw(w, http.StatusOK, body)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		h.logger.Warn("evaluation cache lookup failed",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	metrics.ObserveCache(false)

	payload, err := compute()
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
		return
	}
	if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
		h.logger.Warn("failed to store evaluation in cache",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	h.writeRaw(w, http.StatusOK, body)
}

func observe(formula eligibility.Formula, verdict eligibility.Verdict) {
	kinds := make([]string, 0, len(verdict.Corrections))
	for _, c := range verdict.Corrections {
		kinds = append(kinds, string(c.Kind))
	}
	metrics.ObserveVerdict(formula.Tier, string(verdict.Status), kinds...)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loans.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, eligibility.ErrUnknownFormula), errors.Is(err, eligibility.ErrUnknownUnitCount):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.ObserveRequest(route, strconv.Itoa(rec.status), time.Since(start))
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("affordability request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
