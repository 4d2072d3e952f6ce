package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/wakili/backend/internal/graph"
)

// HealthService defines behaviour for readiness checks.
type HealthService interface {
	Check(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Check implements the HealthService interface.
func (s GraphHealthService) Check(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	if err := s.Client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	return nil
}

// Pinger is implemented by the session store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionStoreHealthService verifies the session database is reachable.
type SessionStoreHealthService struct {
	Store Pinger
}

// Check implements the HealthService interface.
func (s SessionStoreHealthService) Check(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Ping(ctx); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// HealthChecks runs every check and joins their failures.
type HealthChecks []HealthService

// Check implements the HealthService interface.
func (hc HealthChecks) Check(ctx context.Context) error {
	var errs []error
	for _, check := range hc {
		if check == nil {
			continue
		}
		if err := check.Check(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
