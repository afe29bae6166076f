package api

import (
	"net/http"
	"testing"
	"time"
)

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestQuota_Observe(t *testing.T) {
	now := time.Unix(1_700_000_100, 0)
	q := Quota{}.observe(headers(
		"X-RateLimit-Limit", "60",
		"X-RateLimit-Remaining", "30",
		"X-RateLimit-Reset", "1700000000",
		RequestIDHeader, "r1",
	), now)
	if q.Limit != 60 || q.Remaining != 30 || q.ResetAt.Unix() != 1_700_000_000 || q.RequestID != "r1" || !q.SeenAt.Equal(now) {
		t.Fatalf("quota = %+v", q)
	}

	q = q.observe(headers(RequestIDHeader, "r2"), now)
	if q.Limit != 60 || q.Remaining != 30 || q.RequestID != "r2" {
		t.Errorf("window should survive a response without limit headers: %+v", q)
	}

	q = q.observe(headers("X-RateLimit-Remaining", "oops"), now)
	if q.Remaining != 30 || q.RequestID != "" {
		t.Errorf("unparsable header should be ignored: %+v", q)
	}
}

func TestQuota_Low(t *testing.T) {
	tests := []struct {
		limit, remaining int
		want             bool
	}{
		{0, 0, false},
		{60, 30, false},
		{60, 6, false},
		{60, 5, true},
		{100, 0, true},
	}
	for _, tt := range tests {
		if got := (Quota{Limit: tt.limit, Remaining: tt.remaining}).Low(); got != tt.want {
			t.Errorf("Low(%d/%d) = %v, want %v", tt.remaining, tt.limit, got, tt.want)
		}
	}
}

func TestQuotaTracker(t *testing.T) {
	var tr quotaTracker
	if _, ok := tr.current(); ok {
		t.Fatal("empty tracker should report nothing")
	}

	tr.observe(&http.Response{Header: headers("X-RateLimit-Limit", "10", "X-RateLimit-Remaining", "4")})
	tr.observe(nil)

	q, ok := tr.current()
	if !ok || q.Limit != 10 || q.Remaining != 4 {
		t.Errorf("current() = %+v, %v", q, ok)
	}
}
