package notify

import "github.com/batterysmart/swapledger/internal/pkg/env"

// Config carries SMS gateway credentials loaded from the environment.
// Enabled is false unless the account credentials are present; a disabled
// gateway logs messages instead of sending them.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
	Enabled    bool
}

// LoadConfig reads the SMS gateway configuration from environment variables.
func LoadConfig() *Config {
	cfg := &Config{
		AccountSID: env.GetEnv("SMS_ACCOUNT_SID", ""),
		AuthToken:  env.GetEnv("SMS_AUTH_TOKEN", ""),
		FromNumber: env.GetEnv("SMS_FROM_NUMBER", ""),
		APIBaseURL: env.GetEnv("SMS_API_BASE_URL", "https://api.twilio.com/2010-04-01"),
	}
	cfg.Enabled = cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.FromNumber != ""
	return cfg
}
