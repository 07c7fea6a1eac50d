package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	LanguageHindi    = "hi"
	LanguageEnglish  = "en"
	LanguageHinglish = "hi-en"
)

// Indian mobile numbers: ten digits, first digit 6-9.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// Driver is an e-rickshaw driver enrolled with the swap network. Drivers are
// never hard-deleted; deactivation flips IsActive so ledger history stays
// attributable.
type Driver struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber       string    `gorm:"type:varchar(15);uniqueIndex" json:"phone_number" validate:"required,indianmobile"`
	Name              string    `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	PreferredLanguage string    `gorm:"type:varchar(10);default:'hi'" json:"preferred_language" validate:"oneof=hi en hi-en"`
	City              string    `gorm:"type:varchar(100)" json:"city"`
	VehicleNumber     string    `gorm:"type:varchar(20)" json:"vehicle_number"`
	IsActive          bool      `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Driver) Validate() error {
	v := validator.New()
	_ = v.RegisterValidation("indianmobile", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v.Struct(d)
}

// IsValidPhoneNumber reports whether s is a well-formed Indian mobile number.
func IsValidPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}
