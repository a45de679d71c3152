package handler

import (
	"encoding/json"
	"net/http"

	"k9harmony/internal/bookings/service"
	apperrors "k9harmony/pkg/errors"
	httputil "k9harmony/pkg/http"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/middleware"
	"k9harmony/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// IdempotencyHeader carries the checkout token when the body does not.
const IdempotencyHeader = "Idempotency-Key"

type checkoutRequest struct {
	Reservation      *model.ReservationDraft `json:"reservation"`
	Payment          *model.PaymentDraft     `json:"payment"`
	IdempotencyToken string                  `json:"idempotency_token"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) BookAndPay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "BookAndPay", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.Reservation == nil || req.Payment == nil {
		h.writeError(w, "BookAndPay", apperrors.InvalidInput("reservation and payment are required"))
		return
	}
	token := req.IdempotencyToken
	if token == "" {
		token = r.Header.Get(IdempotencyHeader)
	}

	reservation, err := h.service.BookAndPay(r.Context(), req.Reservation, req.Payment, token)
	if err != nil {
		h.writeError(w, "BookAndPay", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "BookAndPay", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Cancel", apperrors.InvalidInput("Invalid request body"))
		return
	}
	// A caller identified by the customer header always cancels as that customer. Without the header
	// the actor in the body is taken as given, so the own-reservation check is advisory only.
	if customer := middleware.DefaultCustomerExtractor(r); customer != "" {
		req.ActorType = string(model.ActorCustomer)
		req.ActorID = customer
	}

	reservation, err := h.service.Cancel(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

// DoubleBookings lists overlapping confirmed reservations, optionally for one trainer.
func (h *BookingHandler) DoubleBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	found, err := h.service.FindDoubleBookings(r.Context(), r.URL.Query().Get("trainer_id"))
	if err != nil {
		h.writeError(w, "DoubleBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, found); err != nil {
		h.log.Error("failed to write success response", "handler", "DoubleBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.BookAndPay)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/bookings/double-bookings", h.DoubleBookings)
}
