package hash

import "testing"

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("test-secret")

	t.Run("verify accepts the original input", func(t *testing.T) {
		hashed, err := h.Hash("123456")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}

		if !h.Verify(string(hashed), "123456") {
			t.Fatal("expected verification to pass")
		}
	})

	t.Run("verify rejects a different input", func(t *testing.T) {
		hashed, err := h.Hash("123456")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}

		if h.Verify(string(hashed), "654321") {
			t.Fatal("expected verification to fail")
		}
	})

	t.Run("hash is deterministic per secret", func(t *testing.T) {
		first, err := h.Hash("123456")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		second, err := h.Hash("123456")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if string(first) != string(second) {
			t.Fatal("expected identical hashes for identical input")
		}

		other := NewHMACSHA256("another-secret")
		third, err := other.Hash("123456")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if string(first) == string(third) {
			t.Fatal("expected different hashes under different secrets")
		}
	})

	t.Run("hash does not contain the input", func(t *testing.T) {
		hashed, err := h.Hash("123456")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if string(hashed) == "123456" {
			t.Fatal("hash must not be the plaintext")
		}
	})
}
