package ratelimit

import "testing"

func TestAllowConsumesCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0) {
			t.Fatalf("call %d rejected within capacity", i)
		}
	}
	if l.Allow("k", 3, 0) {
		t.Fatalf("call allowed beyond capacity with zero refill")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first call on a rejected")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("second call on a allowed")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("key b throttled by key a")
	}
}
