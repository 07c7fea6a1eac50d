package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"9876543210", "6000000001", "7912345678", "8123456789"}
	for _, p := range valid {
		assert.True(t, IsValidPhoneNumber(p), "phone %q", p)
	}

	invalid := []string{
		"",
		"12345",
		"5876543210",  // leading digit below 6
		"98765432101", // eleven digits
		"987654321",   // nine digits
		"+919876543210",
		"98765 43210",
	}
	for _, p := range invalid {
		assert.False(t, IsValidPhoneNumber(p), "phone %q", p)
	}
}

func TestDriverValidate(t *testing.T) {
	ok := &Driver{PhoneNumber: "9876543210", Name: "Ramesh Kumar", PreferredLanguage: LanguageHindi}
	assert.NoError(t, ok.Validate())

	badPhone := &Driver{PhoneNumber: "123", Name: "Ramesh Kumar", PreferredLanguage: LanguageHindi}
	assert.Error(t, badPhone.Validate())

	badLang := &Driver{PhoneNumber: "9876543210", Name: "Ramesh Kumar", PreferredLanguage: "fr"}
	assert.Error(t, badLang.Validate())

	shortName := &Driver{PhoneNumber: "9876543210", Name: "R", PreferredLanguage: LanguageEnglish}
	assert.Error(t, shortName.Validate())
}
