package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "brooks"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv        = "BROOKS_APP_ENV"
	EnvPort          = "BROOKS_APP_PORT"
	EnvDBDSN         = "BROOKS_DB_DSN"
	EnvDBHost        = "BROOKS_DB_HOST"
	EnvDBUser        = "BROOKS_DB_USER"
	EnvDBName        = "BROOKS_DB_NAME"
	EnvRedisURL      = "BROOKS_REDIS_URL"
	EnvStripeAPIKey  = "BROOKS_STRIPE_API_KEY"
	EnvRelayEndpoint = "BROOKS_RELAY_ENDPOINT"
	EnvRelayOwner    = "BROOKS_RELAY_OWNER_EMAIL"
	EnvSiteURL       = "BROOKS_SITE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Relay        RelayConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BROOKS_APP_ENV" required:"true"`
	Port         string `envconfig:"BROOKS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BROOKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BROOKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BROOKS_DB_DSN"`
	Driver string `envconfig:"BROOKS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BROOKS_DB_HOST"`
	LegacyPort     int    `envconfig:"BROOKS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BROOKS_DB_USER"`
	LegacyPassword string `envconfig:"BROOKS_DB_PASSWORD"`
	LegacyName     string `envconfig:"BROOKS_DB_NAME"`
	LegacySSLMode  string `envconfig:"BROOKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BROOKS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BROOKS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BROOKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BROOKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BROOKS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BROOKS_REDIS_ADDR"`
	Password     string        `envconfig:"BROOKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"BROOKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BROOKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BROOKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BROOKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BROOKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BROOKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"BROOKS_STRIPE_API_KEY"`
	Env    string `envconfig:"BROOKS_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// RelayConfig points at the form-to-email webhook that delivers order
// summaries to the shop owner.
type RelayConfig struct {
	Endpoint   string        `envconfig:"BROOKS_RELAY_ENDPOINT" required:"true"`
	OwnerEmail string        `envconfig:"BROOKS_RELAY_OWNER_EMAIL" required:"true"`
	OwnerName  string        `envconfig:"BROOKS_RELAY_OWNER_NAME" default:"Brook"`
	OwnerPhone string        `envconfig:"BROOKS_RELAY_OWNER_PHONE"`
	Timeout    time.Duration `envconfig:"BROOKS_RELAY_TIMEOUT" default:"10s"`
}

// CheckoutConfig carries storefront pricing and return-URL settings.
type CheckoutConfig struct {
	Currency         string        `envconfig:"BROOKS_CHECKOUT_CURRENCY" default:"usd"`
	DeliveryFeeCents int64         `envconfig:"BROOKS_CHECKOUT_DELIVERY_FEE_CENTS" default:"500"`
	SiteURL          string        `envconfig:"BROOKS_SITE_URL" required:"true"`
	CartTTL          time.Duration `envconfig:"BROOKS_CART_TTL" default:"24h"`
	PendingOrderTTL  time.Duration `envconfig:"BROOKS_PENDING_ORDER_TTL" default:"1h"`
}

// SuccessURL is where the hosted payment page sends the browser after payment.
func (c CheckoutConfig) SuccessURL() string {
	return strings.TrimRight(c.SiteURL, "/") + "/checkout?payment=success&session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where the hosted payment page sends the browser on cancel.
func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.SiteURL, "/") + "/checkout?payment=cancelled"
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BROOKS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BROOKS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
