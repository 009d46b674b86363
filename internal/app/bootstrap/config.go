// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the club service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, mail_smtp_host, etc.
//   - Environment variables: MUSCLUB_MONGO_URI, MUSCLUB_MAIL_SMTP_HOST, etc.
//   - Command-line flags: --mongo_uri, --mail_smtp_host, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "musclub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@musclub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "MusClub", Desc: "From display name"},

	// AI provider
	{Name: "deepseek_api_url", Default: "https://api.deepseek.com/chat/completions", Desc: "DeepSeek-compatible chat completions endpoint"},
	{Name: "deepseek_api_key", Default: "", Desc: "DeepSeek API key (blank disables AI generation at call time)"},
	{Name: "deepseek_model", Default: "deepseek-chat", Desc: "Model passed to the AI provider"},

	// Reminder sweep
	{Name: "reminder_sweep_interval", Default: "60s", Desc: "How often due reminder emails are delivered (e.g., 60s, 2m)"},

	// Base URL for operational logging
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL of this deployment"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MUSCLUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MUSCLUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		DeepSeekAPIURL: appValues.String("deepseek_api_url"),
		DeepSeekAPIKey: appValues.String("deepseek_api_key"),
		DeepSeekModel:  appValues.String("deepseek_model"),

		ReminderSweepInterval: appValues.Duration("reminder_sweep_interval", 60*time.Second),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked here to catch configuration errors
// before a connection attempt. A blank DeepSeek key is allowed: the AI
// endpoints then answer 503 at call time, which keeps local development
// usable without a provider account.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.DeepSeekAPIURL == "" {
		return fmt.Errorf("deepseek_api_url must not be blank")
	}
	if appCfg.ReminderSweepInterval < time.Second {
		return fmt.Errorf("reminder_sweep_interval must be at least 1s, got %s", appCfg.ReminderSweepInterval)
	}
	if appCfg.DeepSeekAPIKey == "" {
		logger.Warn("deepseek_api_key is blank; AI generation endpoints will fail until it is set")
	}
	return nil
}
