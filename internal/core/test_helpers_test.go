package core

import (
	"testing"
	"time"
)

// newTestModel registers connections 0..n-1 as User0..UserN-1.
func newTestModel(n int) *Model {
	m := NewModel()
	for i := 0; i < n; i++ {
		m.RegisterUser(ConnID(i))
	}
	return m
}

func mustEvent(t *testing.T, ch <-chan Broadcast, kind BroadcastKind) Broadcast {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return Broadcast{}
}
