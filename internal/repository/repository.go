package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wakili/backend/internal/graph"
)

var (
	// ErrNotFound is returned when a node addressed by id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write collides with a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Repository encapsulates graph persistence operations.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// Ping verifies the graph database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

func (r *Repository) write(ctx context.Context, op, query string, params map[string]any) (graph.Result, error) {
	res, err := r.client.ExecuteWrite(ctx, query, params)
	if err != nil {
		if errors.Is(err, graph.ErrConstraintViolation) {
			return graph.Result{}, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return graph.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (r *Repository) read(ctx context.Context, op, query string, params map[string]any) (graph.Result, error) {
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return graph.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// count runs a count query and returns its "total" column.
func (r *Repository) count(ctx context.Context, op, query string, params map[string]any) (int64, error) {
	res, err := r.read(ctx, op, query, params)
	if err != nil {
		return 0, err
	}
	return toInt64(res.First()["total"]), nil
}

func clampPage(offset, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return formatTime(*t)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toBool(val any) bool {
	b, _ := val.(bool)
	return b
}

func toStringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toMap(val any) map[string]any {
	m, _ := val.(map[string]any)
	return m
}

func toTime(val any) time.Time {
	if t := toTimePtr(val); t != nil {
		return *t
	}
	return time.Time{}
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
