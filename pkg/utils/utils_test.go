package utils

import (
	"testing"

	"github.com/matryer/is"
)

func TestNormalizeHandle(t *testing.T) {
	is := is.New(t)
	is.Equal(NormalizeHandle("  Alice "), "alice")
	is.Equal(NormalizeHandle("BOB.smith"), "bob.smith")
	is.Equal(NormalizeHandle(""), "")
}

func TestValidateHandle(t *testing.T) {
	cases := map[string]bool{
		"alice":                 true,
		"al":                    false,
		"abc":                   true,
		"a2345678901234567890":  true,
		"a23456789012345678901": false,
		"bob_smith":             true,
		"bob.smith-2":           true,
		"_bob":                  false,
		"bob.":                  false,
		"-bob-":                 false,
		"Alice":                 false,
		"bob smith":             false,
		"bób":                   false,
		"":                      false,
	}
	for handle, valid := range cases {
		t.Run(handle, func(t *testing.T) {
			err := ValidateHandle(handle)
			if valid && err != nil {
				t.Errorf("ValidateHandle(%q) => %v, want nil", handle, err)
			}
			if !valid {
				if err == nil {
					t.Errorf("ValidateHandle(%q) => nil, want error", handle)
				}
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	is := is.New(t)
	is.NoErr(ValidateEmail("alice@example.com"))
	is.True(ValidateEmail("") != nil)
	is.True(ValidateEmail("alice") != nil)
	is.True(ValidateEmail("Alice <alice@example.com>") != nil)
	is.Equal(NormalizeEmail(" Alice@Example.COM "), "alice@example.com")
}
