package argon

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateAndCompare(t *testing.T) {
	hash, err := CreateHash("secret-pass", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	ok, err := ComparePasswordAndHash("secret-pass", hash)
	if err != nil {
		t.Fatalf("compare hash: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to match")
	}

	ok, err = ComparePasswordAndHash("wrong", hash)
	if err != nil {
		t.Fatalf("compare hash wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected password mismatch")
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := &Params{Memory: 16 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	hash, err := CreateHash("secret-pass", weak)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !NeedsRehash(hash, DefaultParams) {
		t.Fatalf("expected weak hash to need rehash")
	}

	strong, err := CreateHash("secret-pass", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if NeedsRehash(strong, nil) {
		t.Fatalf("expected default hash to be current")
	}
	if !NeedsRehash("not-a-hash", DefaultParams) {
		t.Fatalf("expected malformed hash to need rehash")
	}
}

func TestHashFormat(t *testing.T) {
	hash, err := CreateHash("Admin123!Gridstock", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=2,p=1$") {
		t.Fatalf("unexpected hash prefix: %s", hash)
	}
	other, err := CreateHash("Admin123!Gridstock", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if hash == other {
		t.Fatalf("expected distinct salts per hash")
	}
}

func TestCreateHashRejectsBadInput(t *testing.T) {
	if _, err := CreateHash("   ", DefaultParams); err == nil {
		t.Fatalf("expected blank password error")
	}
	if _, err := CreateHash("secret-pass", &Params{Memory: 1024, Iterations: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}); err == nil {
		t.Fatalf("expected zero iterations to be rejected")
	}
}

func TestCompareMalformedHash(t *testing.T) {
	hash, err := CreateHash("secret-pass", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	cases := []struct {
		name    string
		encoded string
		want    error
	}{
		{name: "not a hash", encoded: "plain", want: ErrInvalidHash},
		{name: "bcrypt", encoded: "$2a$10$abcdefghijklmnopqrstuv$abcdefghijklmnopqrstuvwx", want: ErrInvalidHash},
		{name: "argon2i", encoded: strings.Replace(hash, "$argon2id$", "$argon2i$", 1), want: ErrIncompatibleVariant},
		{name: "old version", encoded: strings.Replace(hash, "$v=19$", "$v=16$", 1), want: ErrIncompatibleVersion},
		{name: "bad parameters", encoded: strings.Replace(hash, "$m=", "$m=x", 1), want: ErrInvalidHash},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := ComparePasswordAndHash("secret-pass", tc.encoded)
			if ok || !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got ok=%v err=%v", tc.want, ok, err)
			}
		})
	}
}
