package blacklist

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_RevokeAndCheck(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Error("jti-1 should be revoked")
	}

	revoked, err = s.IsRevoked(ctx, "never-revoked")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Error("unknown jti reported revoked")
	}
}

func TestMemoryStore_NonPositiveTTLIsNoop(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Revoke(ctx, "jti-1", 0); err != nil {
		t.Fatalf("Revoke(ttl=0): %v", err)
	}
	if err := s.Revoke(ctx, "jti-2", -time.Second); err != nil {
		t.Fatalf("Revoke(ttl<0): %v", err)
	}
	for _, jti := range []string{"jti-1", "jti-2"} {
		revoked, err := s.IsRevoked(ctx, jti)
		if err != nil {
			t.Fatalf("IsRevoked: %v", err)
		}
		if revoked {
			t.Errorf("%s should not be revoked after non-positive ttl", jti)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestMemoryStore_EntryExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }

	if err := s.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	now = now.Add(59 * time.Second)
	if revoked, _ := s.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("entry expired early")
	}

	now = now.Add(2 * time.Second)
	if revoked, _ := s.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("entry still revoked past its ttl")
	}
	if s.Len() != 0 {
		t.Errorf("lazy expiry left %d entries", s.Len())
	}
}

func TestMemoryStore_LaterExpiryWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }

	if err := s.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// A second, shorter revocation must not shorten the entry.
	if err := s.Revoke(ctx, "jti-1", time.Second); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	now = now.Add(time.Minute)
	if revoked, _ := s.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("entry was shortened by a concurrent shorter revocation")
	}
}

func TestMemoryStore_ConcurrentRevoke(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Revoke(ctx, "shared-jti", time.Minute)
		}()
	}
	wg.Wait()

	revoked, err := s.IsRevoked(ctx, "shared-jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Error("entry lost under concurrent revocation")
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }

	_ = s.Revoke(ctx, "old", time.Minute)
	_ = s.Revoke(ctx, "fresh", time.Hour)

	now = now.Add(30 * time.Minute)
	n, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("Sweep dropped %d entries, want 1", n)
	}
	if revoked, _ := s.IsRevoked(ctx, "fresh"); !revoked {
		t.Error("Sweep removed a live entry")
	}
}
