package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"k9harmony/internal/bookings/service"
	apperrors "k9harmony/pkg/errors"
	"k9harmony/pkg/logger"
	"k9harmony/pkg/middleware"
	"k9harmony/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	token     string
	draft     *model.ReservationDraft
	bookErr   error
	cancelled *model.CancelRequest
	stored    map[string]*model.Reservation
}

func (m *mockBookingService) BookAndPay(_ context.Context, draft *model.ReservationDraft, _ *model.PaymentDraft, token string) (*model.Reservation, error) {
	m.token = token
	m.draft = draft
	if m.bookErr != nil {
		return nil, m.bookErr
	}
	return &model.Reservation{ID: "r1", CustomerID: draft.CustomerID, Status: model.StatusConfirmed}, nil
}

func (m *mockBookingService) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	r, ok := m.stored[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Reservation", id)
	}
	return r, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.cancelled = req
	r.Status = model.StatusCancelled
	return r, nil
}

func (m *mockBookingService) FindDoubleBookings(_ context.Context, _ string) ([]service.DoubleBooking, error) {
	return []service.DoubleBooking{}, nil
}

func newRouter(svc service.BookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

type envelope struct {
	Success bool               `json:"success"`
	Data    *model.Reservation `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, router http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

const checkoutBody = `{
	"reservation": {"customer_id": "CUS-1", "animal_id": "ANM-1", "trainer_code": "TRN-001", "start_time": "2026-03-05T09:00:00Z"},
	"payment": {"source_token": "cnon:ok", "amount": 8000},
	"idempotency_token": "tok-body"
}`

func TestBookAndPay_Created(t *testing.T) {
	svc := &mockBookingService{}
	rec, env := do(t, newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(checkoutBody)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "r1", env.Data.ID)
	assert.Equal(t, "tok-body", svc.token)
	assert.Equal(t, "CUS-1", svc.draft.CustomerID)
}

func TestBookAndPay_TokenFromHeader(t *testing.T) {
	svc := &mockBookingService{}
	body := strings.Replace(checkoutBody, `"tok-body"`, `""`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(IdempotencyHeader, "tok-header")

	rec, _ := do(t, newRouter(svc), req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "tok-header", svc.token)
}

func TestBookAndPay_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"missing payment", `{"reservation": {"customer_id": "CUS-1"}}`, nil, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"slot taken", checkoutBody, apperrors.SlotTaken("taken"), http.StatusConflict, apperrors.CodeSlotTaken},
		{"payment failed", checkoutBody, apperrors.PaymentFailed("declined", nil), http.StatusPaymentRequired, apperrors.CodePaymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{bookErr: tt.serviceErr}
			rec, env := do(t, newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestBookAndPay_SlotTakenCarriesRefreshAction(t *testing.T) {
	svc := &mockBookingService{bookErr: apperrors.SlotTaken("taken")}
	_, env := do(t, newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(checkoutBody)))

	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.ActionRefreshAvailability, env.Error.Details["action"])
}

func TestGetByID(t *testing.T) {
	svc := &mockBookingService{stored: map[string]*model.Reservation{"r1": {ID: "r1", Status: model.StatusConfirmed}}}
	router := newRouter(svc)

	rec, env := do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/r1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r1", env.Data.ID)

	rec, _ = do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancel(t *testing.T) {
	svc := &mockBookingService{stored: map[string]*model.Reservation{"r1": {ID: "r1", Status: model.StatusConfirmed}}}
	body := `{"actor_type": "TRAINER", "actor_id": "TRN-001", "reason": "sick"}`

	rec, env := do(t, newRouter(svc), httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/r1/cancel", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCancelled, env.Data.Status)
	require.NotNil(t, svc.cancelled)
	assert.Equal(t, "sick", svc.cancelled.Reason)
}

func TestCancel_CustomerHeaderOverridesBodyActor(t *testing.T) {
	svc := &mockBookingService{stored: map[string]*model.Reservation{"r1": {ID: "r1", Status: model.StatusConfirmed}}}
	body := `{"actor_type": "SYSTEM", "actor_id": "ops", "reason": "sick"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/r1/cancel", strings.NewReader(body))
	req.Header.Set(middleware.CustomerIDHeader, "CUS-2")
	rec, _ := do(t, newRouter(svc), req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.cancelled)
	assert.Equal(t, string(model.ActorCustomer), svc.cancelled.ActorType)
	assert.Equal(t, "CUS-2", svc.cancelled.ActorID)
}
