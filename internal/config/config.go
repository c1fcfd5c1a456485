package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	StoreDriver       string // mysql | memory
	DBUser            string // database username
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
	JWTSecret         string // secret used to sign session tokens
	SessionTTLMin     int    // session lifetime in minutes
	BcryptCost        int    // bcrypt cost for password hashing
	LoginURL          string // where unauthenticated requests are redirected
	LogoutRedirectURL string // where the browser lands after logout
	LogLevel          string // debug | info | warn | error
	LogFormat         string // json | text
	AMQPURL           string // RabbitMQ URL; listing events are disabled when empty
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
// The DB_* variables are only required for the mysql store driver.
func Load() Config {
	cfg := Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		StoreDriver:       getenv("STORE_DRIVER", "mysql"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		JWTSecret:         must("JWT_SECRET"),
		SessionTTLMin:     mustInt("SESSION_TTL_MIN"),
		BcryptCost:        mustInt("BCRYPT_COST"),
		LoginURL:          getenv("LOGIN_URL", "/accounts/login"),
		LogoutRedirectURL: getenv("LOGOUT_REDIRECT_URL", "/"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "json"),
		AMQPURL:           amqpURL(),
	}
	switch cfg.StoreDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case "memory":
	default:
		log.Fatalf("unknown STORE_DRIVER %q (want mysql or memory)", cfg.StoreDriver)
	}
	return cfg
}

// Production reports whether the app runs in a production environment.
// Session cookies are marked Secure there.
func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
