// Package ratelimit provides per-agent fixed-window request limiting.
package ratelimit

import (
	"context"
	"time"
)

// Limiter admits or rejects a request for an agent. Allow increments the
// agent's counter for the current window first and then checks it, so a
// rejected request still consumed a slot; the window is never rolled back.
//
// Implementations are fail-open: when the counting backend is unavailable
// the request is allowed and a warning is logged. Availability is chosen over
// strictness here on purpose.
type Limiter interface {
	Allow(ctx context.Context, agentID string, limit int, window time.Duration) bool
}
