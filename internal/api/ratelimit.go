package api

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Quota is the rate limit window the API reported on its last response.
type Quota struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	RequestID string
	SeenAt    time.Time
}

// Low reports whether less than a tenth of the window is left.
func (q Quota) Low() bool {
	return q.Limit > 0 && q.Remaining*10 < q.Limit
}

// observe folds the X-RateLimit-* and X-Request-Id headers of h into prev.
// Absent limit headers keep the previous window.
func (q Quota) observe(h http.Header, now time.Time) Quota {
	q.RequestID = h.Get(RequestIDHeader)
	q.SeenAt = now
	if n, err := strconv.Atoi(h.Get("X-RateLimit-Limit")); err == nil {
		q.Limit = n
	}
	if n, err := strconv.Atoi(h.Get("X-RateLimit-Remaining")); err == nil {
		q.Remaining = n
	}
	if ts, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		q.ResetAt = time.Unix(ts, 0)
	}
	return q
}

// quotaTracker holds the latest Quota; nil until the first response.
type quotaTracker struct {
	last atomic.Pointer[Quota]
}

func (t *quotaTracker) observe(resp *http.Response) Quota {
	var prev Quota
	if p := t.last.Load(); p != nil {
		prev = *p
	}
	if resp == nil {
		return prev
	}
	next := prev.observe(resp.Header, time.Now())
	t.last.Store(&next)
	return next
}

func (t *quotaTracker) current() (Quota, bool) {
	p := t.last.Load()
	if p == nil {
		return Quota{}, false
	}
	return *p, true
}
