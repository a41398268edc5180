package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := NewBcryptHasher(4) // low cost keeps the test fast

	hash, err := h.Hash("newpw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "newpw" {
		t.Fatalf("hash must not equal plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpw")); err != nil {
		t.Fatalf("hash does not verify against its own plaintext: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h := NewBcryptHasher(0)
	if h.cost <= 0 {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
