package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !IsArgon2Hash(hash) {
		t.Errorf("Expected argon2id hash, got %q", hash)
	}

	ok, err := VerifyPassword("s3cret!", hash)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !ok {
		t.Error("Expected password to verify")
	}

	ok, err = VerifyPassword("mauvais", hash)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if ok {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	h1, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	h2, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if h1 == h2 {
		t.Error("Expected distinct salts to produce distinct hashes")
	}
}
