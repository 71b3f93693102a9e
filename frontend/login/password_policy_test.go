package login

import (
	"strings"
	"testing"

	"gridstock/infrastructure/apperr"
)

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "seeded admin default", pwd: "Admin123!Gridstock"},
		{name: "unicode counts runes", pwd: "Lagerplätze9!"},
		{name: "short", pwd: "A1!bc", wantErr: "at least 12"},
		{name: "too long", pwd: "Aa1!" + strings.Repeat("xy", 70), wantErr: "at most 128"},
		{name: "padded", pwd: " Admin123!Gridstock", wantErr: "start or end with a space"},
		{name: "repeated run", pwd: "Admin1111!Grid", wantErr: "repeat a character"},
		{name: "no symbol", pwd: "Admin123Gridstock", wantErr: "must include a symbol"},
		{name: "no digit or upper", pwd: "admin!!!gridstock", wantErr: "an uppercase letter, a digit"},
		{name: "letters only", pwd: "abcdefghijklmn", wantErr: "an uppercase letter, a digit, a symbol"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePasswordPolicy(tc.pwd)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid password, got error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected policy error containing %q", tc.wantErr)
			}
			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %T", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in %q", tc.wantErr, err.Error())
			}
		})
	}
}
