package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "john_doe", false},
		{"ValidWithHyphen", "john-doe-42", false},
		{"MinLength", "abc", false},
		{"TooShort", "ab", true},
		{"TooLong", strings.Repeat("a", 31), true},
		{"IllegalCharacters", "john doe!", true},
		{"LeadingUnderscore", "_john", true},
		{"TrailingHyphen", "john-", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "user@example.com", false},
		{"ValidWithPlus", "user+tag@example.co.uk", false},
		{"NoAt", "userexample.com", true},
		{"NoDomain", "user@", true},
		{"NoTLD", "user@example", true},
		{"TooLong", strings.Repeat("a", 250) + "@example.com", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 129)))
}
