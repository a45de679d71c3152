package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// BookingClient talks to the booking HTTP API.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string, timeout time.Duration) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *BookingClient) Availability(ctx context.Context, trainerCode, yearMonth string, multiAnimal bool) (*Response, error) {
	q := url.Values{}
	q.Set("trainer_code", trainerCode)
	q.Set("year_month", yearMonth)
	if multiAnimal {
		q.Set("multi_animal", strconv.FormatBool(multiAnimal))
	}
	return c.httpClient.GET(ctx, "/api/v1/availability?"+q.Encode())
}

func (c *BookingClient) BookAndPay(ctx context.Context, idempotencyToken string, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings", body, map[string]string{
		"Idempotency-Key": idempotencyToken,
	})
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *BookingClient) Cancel(ctx context.Context, id string, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings/id/"+url.PathEscape(id)+"/cancel", body, nil)
}

func (c *BookingClient) AuditLogs(ctx context.Context, entityType, entityID string) (*Response, error) {
	q := url.Values{}
	q.Set("entity_type", entityType)
	q.Set("entity_id", entityID)
	return c.httpClient.GET(ctx, "/api/v1/audit?"+q.Encode())
}

func (c *BookingClient) ReleaseLock(ctx context.Context, lockID, holder string) (*Response, error) {
	path := fmt.Sprintf("/api/v1/locks/%s?holder=%s", url.PathEscape(lockID), url.QueryEscape(holder))
	return c.httpClient.DELETE(ctx, path)
}
