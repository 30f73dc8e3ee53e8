// Package huntstore holds hunt documents and serializes the
// read-validate-commit cycle for actions against them.
//
// Every backend stores a version number next to the document. Apply loads
// the latest version, runs the reducer, and commits only if the version is
// unchanged; otherwise the whole cycle is repeated against the new state.
// This gives at most one successful commit per (device, qr code) pair no
// matter how many callers race.
package huntstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

var (
	ErrNotFound         = errors.New("hunt not found")
	ErrExists           = errors.New("hunt already exists")
	ErrConflict         = errors.New("hunt was modified concurrently")
	ErrTooManyConflicts = errors.New("gave up after repeated write conflicts")
)

const DefaultMaxAttempts = 5

// Hunt is a stored hunt document.
type Hunt struct {
	ID        string             `json:"id"`
	Version   int64              `json:"version"`
	State     treasurehunt.State `json:"state"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Result is the outcome of a committed action.
type Result struct {
	Hunt     Hunt
	Delta    treasurehunt.Delta
	Attempts int
}

type Store interface {
	CreateHunt(ctx context.Context, id string, state treasurehunt.State) (Hunt, error)
	ListHunts(ctx context.Context) ([]Hunt, error)
	Hunt(ctx context.Context, id string) (Hunt, error)
	// Apply validates action against the latest state of the hunt and commits
	// its delta atomically. Rejections from the reducer are returned as is.
	Apply(ctx context.Context, id string, action treasurehunt.Action) (Result, error)
	Close() error
}

type Options struct {
	Reducer     treasurehunt.Reducer
	MaxAttempts int
}

func (o Options) maxAttempts() int {
	if o.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return o.MaxAttempts
}

// versioned is what a backend must provide for apply.
type versioned interface {
	load(ctx context.Context, id string) (Hunt, error)
	// commit replaces the document if it is still at prev.Version and
	// returns ErrConflict otherwise.
	commit(ctx context.Context, prev Hunt, next treasurehunt.State) (Hunt, error)
}

func apply(ctx context.Context, b versioned, opts Options, id string, action treasurehunt.Action) (Result, error) {
	attempts := opts.maxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		cur, err := b.load(ctx, id)
		if err != nil {
			return Result{}, err
		}

		delta, err := opts.Reducer.Apply(cur.State, action)
		if err != nil {
			return Result{}, err
		}

		next, err := b.commit(ctx, cur, delta.ApplyTo(cur.State))
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("committing %s: %w", action.Type(), err)
		}
		return Result{Hunt: next, Delta: delta, Attempts: attempt}, nil
	}
	return Result{}, fmt.Errorf("%w: %d attempts", ErrTooManyConflicts, attempts)
}

func now() time.Time {
	return time.Now().UTC()
}
