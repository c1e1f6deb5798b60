// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateHostKey(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		salt    string
	}{
		{"standard", "event123", "secret-salt"},
		{"empty event id", "", "salt"},
		{"empty salt", "event456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateHostKey(tt.eventID, tt.salt)

			// Should not be empty
			if key == "" {
				t.Error("GenerateHostKey() returned empty string")
			}

			// Should be deterministic
			key2 := GenerateHostKey(tt.eventID, tt.salt)
			if key != key2 {
				t.Error("GenerateHostKey() is not deterministic")
			}

			// Different inputs should produce different keys
			if tt.eventID != "" && tt.salt != "" {
				differentKey := GenerateHostKey(tt.eventID+"x", tt.salt)
				if key == differentKey {
					t.Error("GenerateHostKey() produced same key for different event IDs")
				}
			}

			// Should be URL-safe (no padding)
			if strings.Contains(key, "=") {
				t.Error("GenerateHostKey() contains padding characters")
			}
		})
	}
}

func TestValidateHostKey(t *testing.T) {
	eventID := "test-event-123"
	salt := "test-salt"
	validKey := GenerateHostKey(eventID, salt)

	tests := []struct {
		name    string
		eventID string
		hostKey string
		salt    string
		wantErr bool
	}{
		{"valid key", eventID, validKey, salt, false},
		{"wrong key", eventID, "wrong-key", salt, true},
		{"wrong event id", "different-event", validKey, salt, true},
		{"wrong salt", eventID, validKey, "different-salt", true},
		{"empty key", eventID, "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHostKey(tt.eventID, tt.hostKey, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHostKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != ErrInvalidHostKey {
				t.Errorf("ValidateHostKey() error = %v, want %v", err, ErrInvalidHostKey)
			}
		})
	}
}

func TestGenerateAnonymousKey(t *testing.T) {
	// Test basic generation
	key, err := GenerateAnonymousKey()
	if err != nil {
		t.Fatalf("GenerateAnonymousKey() error = %v", err)
	}

	if !strings.HasPrefix(key, "anon_") {
		t.Errorf("GenerateAnonymousKey() = %q, want anon_ prefix", key)
	}

	// Should be URL-safe (no padding)
	if strings.Contains(key, "=") {
		t.Error("GenerateAnonymousKey() contains padding characters")
	}

	// Should be reasonably long (24 bytes encoded plus prefix)
	if len(key) < 30 {
		t.Errorf("GenerateAnonymousKey() too short: %d chars", len(key))
	}

	// Test randomness - should not produce duplicates
	keys := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateAnonymousKey()
		if err != nil {
			t.Fatalf("GenerateAnonymousKey() error on iteration %d: %v", i, err)
		}
		if keys[key] {
			t.Errorf("GenerateAnonymousKey() produced duplicate key: %s", key)
		}
		keys[key] = true
	}
}

func TestGenerateJoinCode(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		salt    string
	}{
		{"standard", "event-abc-123", "code-salt"},
		{"different event", "event-xyz-456", "code-salt"},
		{"different salt", "event-abc-123", "other-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := GenerateJoinCode(tt.eventID, tt.salt)

			// Should not be empty
			if code == "" {
				t.Error("GenerateJoinCode() returned empty string")
			}

			// Should be deterministic
			code2 := GenerateJoinCode(tt.eventID, tt.salt)
			if code != code2 {
				t.Error("GenerateJoinCode() is not deterministic")
			}

			// Should be reasonably short
			if len(code) > 15 {
				t.Errorf("GenerateJoinCode() too long: %d chars", len(code))
			}

			// Should be URL-safe (alphanumeric only)
			for _, c := range code {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
					t.Errorf("GenerateJoinCode() contains non-alphanumeric char: %c", c)
				}
			}
		})
	}

	// Different inputs should produce different codes
	code1 := GenerateJoinCode("event1", "salt")
	code2 := GenerateJoinCode("event2", "salt")
	if code1 == code2 {
		t.Error("GenerateJoinCode() produced same code for different event IDs")
	}

	code3 := GenerateJoinCode("event1", "salt1")
	code4 := GenerateJoinCode("event1", "salt2")
	if code3 == code4 {
		t.Error("GenerateJoinCode() produced same code for different salts")
	}
}

func TestBase62Encode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"zero bytes", []byte{0, 0, 0, 0}},
		{"small value", []byte{0, 0, 0, 1}},
		{"large value", []byte{255, 255, 255, 255, 255, 255, 255, 255}},
		{"mixed value", []byte{42, 123, 200, 17}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := base62Encode(tt.input)

			// Should not be empty (except for all zeros -> "0")
			if result == "" {
				t.Error("base62Encode() returned empty string")
			}

			// Should only contain base62 characters
			for _, c := range result {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
					t.Errorf("base62Encode() contains invalid char: %c", c)
				}
			}

			// Should be deterministic
			result2 := base62Encode(tt.input)
			if result != result2 {
				t.Error("base62Encode() is not deterministic")
			}
		})
	}

	// Different inputs should produce different outputs
	out1 := base62Encode([]byte{1, 2, 3, 4})
	out2 := base62Encode([]byte{5, 6, 7, 8})
	if out1 == out2 {
		t.Error("base62Encode() produced same output for different inputs")
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should not be empty
			if hash == "" {
				t.Error("HashIP() returned empty string")
			}

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			// Should be valid hex
			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashIP() contains invalid hex char: %c", c)
				}
			}

			// Should be deterministic
			hash2 := HashIP(tt.ip, tt.salt)
			if hash != hash2 {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	// Different IPs should produce different hashes
	hash1 := HashIP("192.168.1.1", "salt")
	hash2 := HashIP("192.168.1.2", "salt")
	if hash1 == hash2 {
		t.Error("HashIP() produced same hash for different IPs")
	}

	// Different salts should produce different hashes
	hash3 := HashIP("192.168.1.1", "salt1")
	hash4 := HashIP("192.168.1.1", "salt2")
	if hash3 == hash4 {
		t.Error("HashIP() produced same hash for different salts")
	}
}

// Benchmark tests
func BenchmarkGenerateHostKey(b *testing.B) {
	eventID := "test-event-123"
	salt := "test-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateHostKey(eventID, salt)
	}
}

func BenchmarkGenerateAnonymousKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateAnonymousKey()
	}
}

func BenchmarkGenerateJoinCode(b *testing.B) {
	eventID := "test-event-123"
	salt := "code-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateJoinCode(eventID, salt)
	}
}
