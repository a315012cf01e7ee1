// Package reference supplies the expected metric values for each figure.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/sznuper/repro/internal/result"
)

// ErrNotFound is returned when a store has no reference for a figure.
var ErrNotFound = errors.New("reference not found")

// Store loads the reference record for a named figure. Implementations may
// perform I/O; callers pass a context and treat errors as recoverable.
type Store interface {
	Load(ctx context.Context, name string) (result.Record, error)
}

// Static is an in-memory store of literal references.
type Static map[string]result.Record

// Load implements Store.
func (s Static) Load(ctx context.Context, name string) (result.Record, error) {
	if err := ctx.Err(); err != nil {
		return result.Record{}, err
	}
	rec, ok := s[name]
	if !ok {
		return result.Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, nil
}

// Chain tries each store in order and returns the first reference found.
// Errors other than ErrNotFound stop the search.
type Chain []Store

// Load implements Store.
func (c Chain) Load(ctx context.Context, name string) (result.Record, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		rec, err := s.Load(ctx, name)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return result.Record{}, err
		}
	}
	return result.Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Inline serves one figure's reference given as name → value pairs, as
// written directly in the config file.
func Inline(figure string, values map[string]float64) Static {
	return Static{figure: result.FromMap(values)}
}

// Builtin returns the published references shipped with repro.
func Builtin() Static {
	return Static{
		"figure18": mustRecord(
			result.Field{Name: "ipc_speedup", Label: "IPC speedup", Value: 1.044740928},
			result.Field{Name: "e2e_speedup", Label: "E2E speedup", Value: 1.007018443},
			result.Field{Name: "pgwalk_speedup", Label: "Page walk speedup", Value: 1.224302584},
		),
	}
}

func mustRecord(fields ...result.Field) result.Record {
	r, err := result.NewRecord(fields...)
	if err != nil {
		panic(err)
	}
	return r
}
