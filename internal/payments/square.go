package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"k9harmony/pkg/client"
	"k9harmony/pkg/logger"
)

// Square speaks the v2 payments API over pkg/client.
type Square struct {
	http       *client.HttpClient
	locationID string
	log        *logger.Logger
}

func NewSquare(baseURL, accessToken, locationID string, timeout time.Duration, log *logger.Logger) *Square {
	c := client.NewHttpClient(baseURL, timeout)
	c.Headers["Authorization"] = "Bearer " + accessToken
	c.Headers["Accept"] = "application/json"
	return &Square{http: c, locationID: locationID, log: log}
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squarePayment struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	AmountMoney    money     `json:"amount_money"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type squareResponse struct {
	Payment  *squarePayment  `json:"payment,omitempty"`
	Payments []squarePayment `json:"payments,omitempty"`
	Refund   *struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		PaymentID string `json:"payment_id"`
		Amount    money  `json:"amount_money"`
	} `json:"refund,omitempty"`
	Errors []squareError `json:"errors,omitempty"`
}

func (s *Square) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body := map[string]any{
		"source_id":       req.SourceToken,
		"idempotency_key": req.IdempotencyKey,
		"amount_money":    money{Amount: req.Amount, Currency: req.Currency},
		"autocomplete":    true,
		"location_id":     s.locationID,
		"reference_id":    req.CustomerRef,
		"note":            req.Note,
	}
	resp, err := s.http.POST(ctx, "/v2/payments", body, nil)
	if err != nil {
		return nil, err
	}

	var out squareResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("decode payment response (status %d): %w", resp.StatusCode, err)
	}
	if !resp.IsSuccess() {
		return nil, s.classify(resp.StatusCode, out.Errors)
	}
	if out.Payment == nil {
		return nil, fmt.Errorf("payment response without payment")
	}
	charge := toCharge(*out.Payment)
	if charge.Status == ChargeFailed || charge.Status == ChargeCanceled {
		return nil, &DeclineError{Code: string(charge.Status), Detail: "payment " + charge.ID}
	}
	return charge, nil
}

func (s *Square) Refund(ctx context.Context, req RefundRequest) (*Refund, error) {
	body := map[string]any{
		"idempotency_key": req.IdempotencyKey,
		"payment_id":      req.ChargeID,
		"amount_money":    money{Amount: req.Amount, Currency: req.Currency},
		"reason":          req.Reason,
	}
	resp, err := s.http.POST(ctx, "/v2/refunds", body, nil)
	if err != nil {
		return nil, err
	}

	var out squareResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("decode refund response (status %d): %w", resp.StatusCode, err)
	}
	if !resp.IsSuccess() || out.Refund == nil {
		return nil, fmt.Errorf("%w: status %d %s", ErrRefundRejected, resp.StatusCode, describe(out.Errors))
	}
	if out.Refund.Status == "REJECTED" || out.Refund.Status == "FAILED" {
		return nil, fmt.Errorf("%w: refund %s is %s", ErrRefundRejected, out.Refund.ID, out.Refund.Status)
	}
	return &Refund{
		ID:       out.Refund.ID,
		ChargeID: out.Refund.PaymentID,
		Status:   out.Refund.Status,
		Amount:   out.Refund.Amount.Amount,
	}, nil
}

func (s *Square) FindCharge(ctx context.Context, idempotencyKey string) (*Charge, error) {
	resp, err := s.http.GET(ctx, "/v2/payments?idempotency_key="+url.QueryEscape(idempotencyKey))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrChargeNotFound
	}

	var out squareResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("decode payment lookup (status %d): %w", resp.StatusCode, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("payment lookup failed: status %d %s", resp.StatusCode, describe(out.Errors))
	}
	for _, p := range out.Payments {
		if p.IdempotencyKey == idempotencyKey {
			return toCharge(p), nil
		}
	}
	return nil, ErrChargeNotFound
}

// classify maps gateway errors. Card errors are declines, everything else is transient.
func (s *Square) classify(status int, errs []squareError) error {
	for _, e := range errs {
		if e.Category == "PAYMENT_METHOD_ERROR" {
			return &DeclineError{Code: e.Code, Detail: e.Detail}
		}
	}
	s.log.Warn("Payment gateway error", "status", status, "errors", describe(errs))
	return fmt.Errorf("payment gateway error: status %d %s", status, describe(errs))
}

func describe(errs []squareError) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Code + ": " + errs[0].Detail
}

func toCharge(p squarePayment) *Charge {
	return &Charge{
		ID:             p.ID,
		Status:         ChargeStatus(p.Status),
		Amount:         p.AmountMoney.Amount,
		Currency:       p.AmountMoney.Currency,
		IdempotencyKey: p.IdempotencyKey,
		CreatedAt:      p.CreatedAt,
	}
}
