package dispatch

import "time"

// window is one rolling rate-limit counter. The count resets to zero exactly
// at resetAt and never goes negative.
type window struct {
	scope   string // "minute" | "hour" | "day", for logs and metrics
	span    time.Duration
	limit   int
	count   int
	resetAt time.Time
}

func newWindow(scope string, span time.Duration, limit int) *window {
	return &window{scope: scope, span: span, limit: limit}
}

// roll resets the counter if now has reached resetAt. The first roll arms
// the window.
func (w *window) roll(now time.Time) {
	if w.resetAt.IsZero() || !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(w.span)
	}
}

// saturated reports whether the window has no remaining capacity at now.
func (w *window) saturated(now time.Time) bool {
	w.roll(now)
	return w.limit > 0 && w.count >= w.limit
}

// untilReset returns how long until the window resets.
func (w *window) untilReset(now time.Time) time.Duration {
	d := w.resetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// take consumes one unit of capacity. Call only after saturated returned false.
func (w *window) take(now time.Time) {
	w.roll(now)
	w.count++
}
