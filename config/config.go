package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Server roles.
const (
	RoleAssistant = "assistant"
	RoleBackend   = "backend"
	RoleAll       = "all"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	ServerRole        string `mapstructure:"SERVER_ROLE"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Remote collaborators consumed by the assistant.
	APIBaseURL         string `mapstructure:"API_BASE_URL"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// Sessions.
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Record Store backend.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Intent classification backend.
	ClassifierProvider string `mapstructure:"CLASSIFIER_PROVIDER"`
	GeminiAPIKey       string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel        string `mapstructure:"GEMINI_MODEL"`
	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel        string `mapstructure:"OPENAI_MODEL"`

	ReminderLeadMinutes int    `mapstructure:"REMINDER_LEAD_MINUTES"`
	ReminderTimezone    string `mapstructure:"REMINDER_TIMEZONE"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables still win through viper.
	_ = godotenv.Load(".env")

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers every default on v. Split out so the CLI can share it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_ROLE", RoleAssistant)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("API_BASE_URL", "http://localhost:3001/api")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL_MINUTES", 12*60)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 1)
	v.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "medibot")
	v.SetDefault("CLASSIFIER_PROVIDER", "keyword")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("REMINDER_LEAD_MINUTES", 24*60)
	v.SetDefault("REMINDER_TIMEZONE", "UTC")
}

// ReminderLocation is the zone appointment dates are read in when scheduling
// reminders. Unknown names fall back to UTC.
func ReminderLocation() *time.Location {
	loc, err := time.LoadLocation(AppConfig.ReminderTimezone)
	if err != nil {
		log.Printf("Unknown REMINDER_TIMEZONE %q, using UTC", AppConfig.ReminderTimezone)
		return time.UTC
	}
	return loc
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// HTTPTimeout is the timeout applied to calls against remote collaborators.
func HTTPTimeout() time.Duration {
	if AppConfig.HTTPTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(AppConfig.HTTPTimeoutSeconds) * time.Second
}

// SessionTTL is how long an issued session stays valid.
func SessionTTL() time.Duration {
	if AppConfig.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(AppConfig.SessionTTLMinutes) * time.Minute
}

// ServesAssistant reports whether the conversation endpoints should be mounted.
func ServesAssistant() bool {
	return AppConfig.ServerRole == RoleAssistant || AppConfig.ServerRole == RoleAll
}

// ServesBackend reports whether the reference Record Store and classifier should be mounted.
func ServesBackend() bool {
	return AppConfig.ServerRole == RoleBackend || AppConfig.ServerRole == RoleAll
}
