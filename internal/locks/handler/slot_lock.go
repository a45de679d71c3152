package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"k9harmony/internal/locks/service"
	apperrors "k9harmony/pkg/errors"
	httputil "k9harmony/pkg/http"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// TrainerResolver looks up a bookable trainer so a checkout lock covers the real lesson span.
type TrainerResolver interface {
	GetBookable(ctx context.Context, code string) (*model.TrainerConfig, error)
}

type acquireRequest struct {
	TrainerCode string    `json:"trainer_code"`
	StartTime   time.Time `json:"start_time"`
	MultiAnimal bool      `json:"multi_animal"`
	Holder      string    `json:"holder"`
	TTLSeconds  int       `json:"ttl_seconds,omitempty"`
}

type SlotLockHandler struct {
	locks    service.LockManager
	trainers TrainerResolver
	log      *logger.Logger
}

func NewSlotLockHandler(locks service.LockManager, trainers TrainerResolver, log *logger.Logger) *SlotLockHandler {
	return &SlotLockHandler{
		locks:    locks,
		trainers: trainers,
		log:      log,
	}
}

func (h *SlotLockHandler) Acquire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req acquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Acquire", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.TrainerCode == "" || req.Holder == "" || req.StartTime.IsZero() {
		h.writeError(w, "Acquire", apperrors.InvalidInput("trainer_code, start_time and holder are required"))
		return
	}

	trainer, err := h.trainers.GetBookable(r.Context(), req.TrainerCode)
	if err != nil {
		h.writeError(w, "Acquire", err)
		return
	}

	end := req.StartTime.Add(trainer.LessonDuration(req.MultiAnimal))
	ttl := time.Duration(req.TTLSeconds) * time.Second
	lock, err := h.locks.Acquire(r.Context(), trainer.ID, req.StartTime, end, req.Holder, ttl)
	if err != nil {
		h.writeError(w, "Acquire", err)
		return
	}

	if err := httputil.WriteCreated(w, lock); err != nil {
		h.log.Error("failed to write created response", "handler", "Acquire", "operation", "WriteCreated", "error", err)
	}
}

func (h *SlotLockHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	holder, err := httputil.RequiredQuery(r, "holder")
	if err != nil {
		h.writeError(w, "Release", err)
		return
	}

	if err := h.locks.Release(r.Context(), ps.ByName("id"), holder); err != nil {
		h.writeError(w, "Release", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotLockHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SlotLockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/locks", h.Acquire)
	router.DELETE("/api/v1/locks/:id", h.Release)
}
