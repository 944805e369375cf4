package util

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptAES_RoundTrip(t *testing.T) {
	key := "test-key"
	plain := []byte(`{"items":[{"description":"aluguel","amount":1200,"sign":"-","checked":false}]}`)

	enc, err := EncryptAES(key, plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(enc, []byte("aluguel")) {
		t.Error("ciphertext leaks plaintext")
	}

	dec, err := DecryptAES(key, enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Errorf("round trip = %q, want %q", dec, plain)
	}
}

func TestEncryptAES_NonDeterministic(t *testing.T) {
	key := "test-key"
	plain := []byte("same input")

	a, _ := EncryptAES(key, plain)
	b, _ := EncryptAES(key, plain)
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same input should differ (random nonce)")
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	enc, _ := EncryptAES("key-a", []byte("secret"))
	if _, err := DecryptAES("key-b", enc); err == nil {
		t.Error("decrypting with the wrong key must fail")
	}
}

func TestDecryptAES_Tampered(t *testing.T) {
	enc, _ := EncryptAES("key", []byte("secret"))
	enc[len(enc)-1] ^= 0xFF
	if _, err := DecryptAES("key", enc); err == nil {
		t.Error("tampered ciphertext must fail authentication")
	}
}

func TestDecryptAES_TooShort(t *testing.T) {
	if _, err := DecryptAES("key", []byte{1, 2, 3}); err == nil {
		t.Error("input shorter than the nonce must fail")
	}
}
