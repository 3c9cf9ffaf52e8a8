package referrals

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		name       string
		userName   string
		wantPrefix string
	}{
		{"normal name", "Wanjiku Kamau", "WAN"},
		{"lowercase name", "brian", "BRI"},
		{"short name falls back", "Jo", "TKR"},
		{"empty name falls back", "", "TKR"},
		{"digits skipped", "A1B2C3D", "ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := generateCode(tt.userName)
			if err != nil {
				t.Fatalf("generateCode() error = %v", err)
			}
			if !strings.HasPrefix(code, tt.wantPrefix) {
				t.Errorf("code %q does not start with %q", code, tt.wantPrefix)
			}
			if len(code) != len(tt.wantPrefix)+6 {
				t.Errorf("code %q has length %d, want %d", code, len(code), len(tt.wantPrefix)+6)
			}
			if code != strings.ToUpper(code) {
				t.Errorf("code %q is not uppercase", code)
			}
		})
	}
}

func TestGenerateCodeUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := generateCode("Wanjiku")
		if err != nil {
			t.Fatalf("generateCode() error = %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}
