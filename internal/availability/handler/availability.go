package handler

import (
	"net/http"
	"time"

	"k9harmony/internal/availability/service"
	httputil "k9harmony/pkg/http"
	"k9harmony/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityResponse struct {
	TrainerCode string       `json:"trainer_code"`
	YearMonth   string       `json:"year_month"`
	MultiAnimal bool         `json:"multi_animal"`
	Days        service.Days `json:"days"`
}

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	code, err := httputil.RequiredQuery(r, "trainer_code")
	if err != nil {
		h.writeError(w, err)
		return
	}
	yearMonth, err := httputil.RequiredQuery(r, "year_month")
	if err != nil {
		h.writeError(w, err)
		return
	}
	year, month, err := httputil.ParseYearMonth(yearMonth)
	if err != nil {
		h.writeError(w, err)
		return
	}
	multiAnimal, err := httputil.OptionalBool(r, "multi_animal")
	if err != nil {
		h.writeError(w, err)
		return
	}
	holder := r.URL.Query().Get("holder")

	days, err := h.service.ComputeAvailability(r.Context(), code, year, time.Month(month), multiAnimal, holder)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		TrainerCode: code,
		YearMonth:   yearMonth,
		MultiAnimal: multiAnimal,
		Days:        days,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Get)
}
