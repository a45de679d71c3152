package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("row not found")
	ErrUnknownTable = errors.New("unknown table")
	// ErrDuplicate is returned when a row with the same primary key already exists.
	ErrDuplicate = errors.New("duplicate row")
)

// Store is row-oriented access to named tables. Rows come back in append order.
type Store interface {
	FetchTable(ctx context.Context, table string) ([]Row, error)
	FindBy(ctx context.Context, table, column string, value any) (Row, error)
	FindAll(ctx context.Context, table, column string, value any) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) error
	// Update changes a single row identified by keyColumn. Callers must own that row.
	Update(ctx context.Context, table, keyColumn string, key any, changes Row) error
	Delete(ctx context.Context, table, column string, value any) (int64, error)
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Row is schema-on-read: a missing column reads as its zero value.
type Row map[string]any

func (r Row) Str(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) Int(col string) int64 {
	switch v := r[col].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	default:
		return 0
	}
}

func (r Row) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if v == "" {
			return time.Time{}
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	default:
		return time.Time{}
	}
}

// JSON decodes a column that holds a JSON document. Empty columns leave target untouched.
func (r Row) JSON(col string, target any) error {
	raw := r.Str(col)
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), target)
}

// EncodeJSON is the inverse of Row.JSON for writers.
func EncodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
