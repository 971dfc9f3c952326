package otp

import (
	"strings"
	"testing"
)

func TestRandomCodeGenerate(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantLength int
	}{
		{name: "default length", length: 0, wantLength: 12},
		{name: "negative falls back", length: -3, wantLength: 12},
		{name: "explicit length", length: 8, wantLength: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewRandomCode(tt.length)

			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if len(code) != tt.wantLength {
				t.Errorf("Generate() length = %d, want %d", len(code), tt.wantLength)
			}
			for _, r := range code {
				if !strings.ContainsRune(alphabet, r) {
					t.Errorf("Generate() produced %q outside the alphabet", r)
				}
			}
		})
	}
}

func TestRandomCodeGenerateUnique(t *testing.T) {
	gen := NewRandomCode(12)

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if _, ok := seen[code]; ok {
			t.Fatalf("Generate() produced duplicate %q", code)
		}
		seen[code] = struct{}{}
	}
}
