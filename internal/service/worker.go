package service

import (
	"context"
	"errors"
	"sync"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads seed lawyers and testimonials using a worker pool.
type BulkIngestor struct {
	service *LawyerService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *LawyerService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// IngestLawyers upserts the provided lawyer profiles concurrently.
func (bi *BulkIngestor) IngestLawyers(ctx context.Context, lawyers []LawyerInput) error {
	return bi.run(ctx, len(lawyers), func(idx int) error {
		return bi.service.UpsertLawyer(ctx, lawyers[idx])
	})
}

// IngestTestimonials stores testimonials concurrently. Lawyers must be
// ingested first. Testimonials of one lawyer are written by a single worker
// so the rating recomputation never races with itself.
func (bi *BulkIngestor) IngestTestimonials(ctx context.Context, testimonials []TestimonialInput) error {
	groups := groupByLawyer(testimonials)
	return bi.run(ctx, len(groups), func(idx int) error {
		var taskErr TaskError
		for _, t := range groups[idx] {
			if err := bi.service.AddTestimonial(ctx, t); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				taskErr.append(err)
			}
		}
		return taskErr.asError()
	})
}

func groupByLawyer(testimonials []TestimonialInput) [][]TestimonialInput {
	index := make(map[string]int)
	var groups [][]TestimonialInput
	for _, t := range testimonials {
		i, ok := index[t.LawyerID]
		if !ok {
			i = len(groups)
			index[t.LawyerID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], t)
	}
	return groups
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
