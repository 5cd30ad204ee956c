// ABOUTME: Last-request-wins coordinator for chart requests.
// ABOUTME: A result is discarded if a newer request started before it finished.
package chart

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrSuperseded is returned for a request overtaken by a newer one.
var ErrSuperseded = errors.New("chart request superseded by a newer request")

// Latest serializes the visible outcome of overlapping Build calls so a
// slow earlier fetch can never replace fresher output.
type Latest struct {
	svc *Service
	gen atomic.Uint64
}

// NewLatest wraps svc.
func NewLatest(svc *Service) *Latest {
	return &Latest{svc: svc}
}

// Build runs q and returns ErrSuperseded if another Build started meanwhile.
func (l *Latest) Build(ctx context.Context, q Query) (*Series, error) {
	gen := l.gen.Add(1)
	series, err := l.svc.Build(ctx, q)
	if l.gen.Load() != gen {
		return nil, ErrSuperseded
	}
	return series, err
}
