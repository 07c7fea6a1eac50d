package payments

import "github.com/batterysmart/swapledger/internal/pkg/env"

// Config carries gateway settings loaded from the environment. An empty
// webhook secret disables signature validation acceptance, every webhook is
// then rejected rather than trusted blindly.
type Config struct {
	WebhookSecret  string
	PaymentBaseURL string
	Gateway        string
}

// LoadConfig reads the gateway configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		WebhookSecret:  env.GetEnv("PAYMENT_WEBHOOK_SECRET", ""),
		PaymentBaseURL: env.GetEnv("PAYMENT_LINK_BASE_URL", "https://pay.batterysmart.in"),
		Gateway:        env.GetEnv("PAYMENT_GATEWAY", "razorpay"),
	}
}
