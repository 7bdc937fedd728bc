package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
	"github.com/xavierca1/leadhub/internal/usecase"
)

type leadCapturer interface {
	Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error)
}

type stageUpdater interface {
	Execute(ctx context.Context, input usecase.UpdateLeadStageInput) (*entity.Lead, error)
}

type LeadHandler struct {
	capture     leadCapturer
	stage       stageUpdater
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

// NewLeadHandler limita o capture a 10 req/min por IP. Rode Limiter().Cleanup
// numa goroutine para liberar visitantes antigos.
func NewLeadHandler(capture leadCapturer, stage stageUpdater, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		capture:     capture,
		stage:       stage,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min por IP
		logger:      logger,
	}
}

func (h *LeadHandler) Limiter() *RateLimiter { return h.rateLimiter }

type UpdateStageRequest struct {
	Stage string `json:"stage"`
}

// CaptureLead trata POST /api/leads/capture.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", CodeRateLimited, nil)
		return
	}

	var req usecase.CaptureLeadInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", CodeValidation, nil)
		return
	}

	out, err := h.capture.Execute(r.Context(), req)
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			writeErrorResponse(w, http.StatusBadRequest, de.Message, de.Code, nil)
			return
		}
		h.logger.Error("❌ falha ao capturar lead", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to capture lead", CodeInternal, nil)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, out.Msg, out)
}

// UpdateStage trata PATCH /api/leads/{id}/stage.
func (h *LeadHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", CodeValidation, nil)
		return
	}

	lead, err := h.stage.Execute(r.Context(), usecase.UpdateLeadStageInput{LeadID: id, Stage: req.Stage})
	switch {
	case err == nil:
		writeSuccess(w, http.StatusOK, "Stage updated", lead)
	case errors.Is(err, entity.ErrInvalidStage):
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), CodeInvalidStage, entity.ValidStages)
	case errors.Is(err, entity.ErrLeadNotFound):
		writeErrorResponse(w, http.StatusNotFound, "Lead not found", CodeNotFound, nil)
	case errors.Is(err, entity.ErrInvalidStageTransition):
		writeErrorResponse(w, http.StatusConflict, err.Error(), CodeInvalidMove, nil)
	default:
		h.logger.Error("❌ falha ao atualizar stage", zap.String("lead_id", id), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to update stage", CodeInternal, nil)
	}
}

// getClientIP usa o primeiro IP do X-Forwarded-For quando presente.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// Cleanup remove visitantes inativos até o ctx ser cancelado.
func (rl *RateLimiter) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}
