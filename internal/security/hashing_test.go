package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash([]byte("Sup3rSecret!pw"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == "Sup3rSecret!pw" {
		t.Fatalf("Hash returned %q", hash)
	}

	if err := h.Compare(hash, []byte("Sup3rSecret!pw")); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong-password")); err == nil {
		t.Error("Compare accepted a wrong password")
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	if h := NewHasher(0); h.Cost != bcrypt.DefaultCost {
		t.Errorf("Cost = %d, want default %d", h.Cost, bcrypt.DefaultCost)
	}
	if h := NewHasher(1); h.Cost != bcrypt.MinCost {
		t.Errorf("Cost = %d, want min %d", h.Cost, bcrypt.MinCost)
	}
	if h := NewHasher(99); h.Cost != bcrypt.MaxCost {
		t.Errorf("Cost = %d, want max %d", h.Cost, bcrypt.MaxCost)
	}
}
