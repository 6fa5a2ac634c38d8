package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime knob for the academy backend. Provider
// adapters are enabled purely by the presence of their credentials.
type Config struct {
	Port           string
	UseMemoryStore bool

	// Phone handling
	DefaultCountryCode string // prefixed to 10-digit local numbers

	// OTP lifecycle
	OTPTTL        time.Duration // session valid window, checked at confirm
	SessionMaxAge time.Duration // cleanup pass drops sessions older than this
	SendCooldown  time.Duration // min gap between sends per phone
	MaxAttempts   int

	// Wizard snapshots
	SnapshotTTL time.Duration

	// Identity token issued after successful verification
	JWTSecret string

	// WhatsApp campaign provider
	WhatsAppEndpoint string
	WhatsAppAPIKey   string
	WhatsAppCampaign string
	WhatsAppShape    string // starting template-shape variant, empty = first

	// SMS vendor A (MSG91-style OTP API)
	MSG91AuthKey    string
	MSG91TemplateID string
	MSG91SenderID   string

	// SMS vendor B (Twilio)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	// Hosted identity platform (server-side phone challenge)
	IdentityBaseURL string
	IdentityAPIKey  string

	// Local deterministic provider for offline development
	DevMode     bool
	DevCodes    []string
	WebhookKey  string // HMAC key for provider status callbacks
	Environment string
}

// Load reads .env (if present) and builds the Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	return Config{
		Port:           getEnv("PORT", "8080"),
		UseMemoryStore: getEnv("USE_MEMORY_STORE", "") == "true",

		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+91"),

		OTPTTL:        durationOrDefault(getEnv("OTP_TTL", "5m"), 5*time.Minute),
		SessionMaxAge: durationOrDefault(getEnv("OTP_SESSION_MAX_AGE", "10m"), 10*time.Minute),
		SendCooldown:  durationOrDefault(getEnv("OTP_SEND_COOLDOWN", "60s"), 60*time.Second),
		MaxAttempts:   atoiOrDefault(getEnv("OTP_MAX_ATTEMPTS", "3"), 3),

		SnapshotTTL: durationOrDefault(getEnv("WIZARD_SNAPSHOT_TTL", "30m"), 30*time.Minute),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		WhatsAppEndpoint: getEnv("WHATSAPP_CAMPAIGN_URL", ""),
		WhatsAppAPIKey:   getEnv("WHATSAPP_API_KEY", ""),
		WhatsAppCampaign: getEnv("WHATSAPP_CAMPAIGN_NAME", "otp_login"),
		WhatsAppShape:    getEnv("WHATSAPP_TEMPLATE_SHAPE", ""),

		MSG91AuthKey:    getEnv("MSG91_AUTH_KEY", ""),
		MSG91TemplateID: getEnv("MSG91_TEMPLATE_ID", ""),
		MSG91SenderID:   getEnv("MSG91_SENDER_ID", "ACADMY"),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:       getEnv("TWILIO_FROM", ""),

		IdentityBaseURL: getEnv("IDENTITY_BASE_URL", ""),
		IdentityAPIKey:  getEnv("IDENTITY_API_KEY", ""),

		DevMode:     getEnv("OTP_DEV_MODE", "") == "true",
		DevCodes:    splitCSV(getEnv("OTP_DEV_CODES", "123456,000000")),
		WebhookKey:  getEnv("WEBHOOK_SIGNING_KEY", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func atoiOrDefault(s string, def int) int {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func durationOrDefault(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
