package graph

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repository to interact
// with the underlying graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	// ExecuteWriteBatch runs every statement inside one write transaction and
	// returns one Result per statement. Nothing is committed if any statement fails.
	ExecuteWriteBatch(ctx context.Context, statements []Statement) ([]Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Statement pairs a cypher query with its parameters.
type Statement struct {
	Query  string
	Params map[string]any
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// First returns the first record or nil when the result is empty.
func (r Result) First() Record {
	if len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrConstraintViolation is returned when a write breaks a uniqueness constraint.
	ErrConstraintViolation = errors.New("graph constraint violation")
)
