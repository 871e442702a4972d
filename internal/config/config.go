package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. It is built once in main and handed to every
// constructor that needs it; nothing reads the environment after startup.
type Config struct {
	Env               string        // application environment ("development" or "production")
	Port              string        // HTTP port to listen on
	LogLevel          string        // zap level name
	MongoURI          string        // MongoDB connection string
	MongoDB           string        // database name
	JWTSecret         string        // secret used to sign session tokens
	JWTExpiresIn      time.Duration // session token lifetime
	CookieExpiresDays int           // lifetime of the jwt cookie in days
	BcryptCost        int           // bcrypt cost for password hashing
	CORSOrigin        string        // allowed browser origin
	RabbitURL         string        // broker URL; empty sends mail directly over SMTP
	Mail              MailConfig
}

// MailConfig describes the SMTP relay used for password reset emails.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// IsDevelopment reports whether verbose error output and request logging
// should be enabled.
func (c Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		MongoURI:          must("MONGO_URI"),
		MongoDB:           envStr("MONGO_DB", "tours"),
		JWTSecret:         must("JWT_SECRET"),
		JWTExpiresIn:      envDur("JWT_EXPIRES_IN", 90*24*time.Hour),
		CookieExpiresDays: envInt("JWT_COOKIE_EXPIRES_IN", 90),
		BcryptCost:        envInt("BCRYPT_COST", 12),
		CORSOrigin:        envStr("CORS_ORIGIN", "http://localhost:3000"),
		RabbitURL:         os.Getenv("RABBITMQ_URL"), // empty allowed
		Mail: MailConfig{
			Host:     envStr("EMAIL_HOST", "localhost"),
			Port:     envInt("EMAIL_PORT", 25),
			Username: os.Getenv("EMAIL_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     envStr("EMAIL_FROM", "Tour Booking <no-reply@tour-booking.local>"),
		},
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
