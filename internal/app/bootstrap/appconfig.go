// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to the
// club service: the Mongo connection, SMTP delivery, the AI provider, and
// the reminder sweep cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty means unauthenticated local relay)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// AI provider (DeepSeek-compatible chat completions)
	DeepSeekAPIURL string // Endpoint URL
	DeepSeekAPIKey string // Bearer token; blank degrades AI endpoints to 503
	DeepSeekModel  string // Model name (default: deepseek-chat)

	// ReminderSweepInterval is how often due notifications are delivered.
	ReminderSweepInterval time.Duration

	// Base URL of the deployment, used in operational logging.
	BaseURL string
}
