package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	MercadoPago  MercadoPagoConfig
	Shipping     ShippingConfig
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
	if err := cfg.MercadoPago.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VERDEO_APP_ENV" required:"true"`
	Port         string `envconfig:"VERDEO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VERDEO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VERDEO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VERDEO_DB_DSN"`
	Driver string `envconfig:"VERDEO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VERDEO_DB_HOST"`
	Port     int    `envconfig:"VERDEO_DB_PORT" default:"5432"`
	User     string `envconfig:"VERDEO_DB_USER"`
	Password string `envconfig:"VERDEO_DB_PASSWORD"`
	Name     string `envconfig:"VERDEO_DB_NAME"`
	SSLMode  string `envconfig:"VERDEO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VERDEO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VERDEO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VERDEO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VERDEO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VERDEO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VERDEO_REDIS_ADDR"`
	Password     string        `envconfig:"VERDEO_REDIS_PASSWORD"`
	DB           int           `envconfig:"VERDEO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VERDEO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VERDEO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VERDEO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VERDEO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VERDEO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"VERDEO_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"VERDEO_JWT_ISSUER" required:"true"`
}

// MercadoPagoConfig carries the payment provider credentials and the URLs the
// provider redirects back to / notifies.
type MercadoPagoConfig struct {
	AccessToken    string        `envconfig:"VERDEO_MP_ACCESS_TOKEN" required:"true"`
	WebhookSecret  string        `envconfig:"VERDEO_MP_WEBHOOK_SECRET"`
	BaseURL        string        `envconfig:"VERDEO_MP_BASE_URL" default:"https://api.mercadopago.com"`
	SiteBaseURL    string        `envconfig:"VERDEO_SITE_BASE_URL" required:"true"`
	CurrencyID     string        `envconfig:"VERDEO_MP_CURRENCY_ID" default:"ARS"`
	RequestTimeout time.Duration `envconfig:"VERDEO_MP_REQUEST_TIMEOUT" default:"10s"`
	WebhookDedupTTL time.Duration `envconfig:"VERDEO_MP_WEBHOOK_DEDUP_TTL" default:"720h"`
}

func (m MercadoPagoConfig) validate() error {
	if strings.TrimSpace(m.SiteBaseURL) == "" {
		return fmt.Errorf("%s is required", EnvSiteBaseURL)
	}
	if _, err := url.ParseRequestURI(m.SiteBaseURL); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvSiteBaseURL, err)
	}
	return nil
}

// IsTest reports whether the configured credential is a sandbox token.
func (m MercadoPagoConfig) IsTest() bool {
	return strings.HasPrefix(m.AccessToken, "TEST-")
}

// ShippingConfig drives server-side shipping pricing. CityRates maps a
// normalized city name to a flat rate in cents; DefaultRateCents applies to
// cities not in the table.
type ShippingConfig struct {
	CityRates        map[string]int `envconfig:"VERDEO_SHIPPING_CITY_RATES"`
	DefaultRateCents int            `envconfig:"VERDEO_SHIPPING_DEFAULT_RATE_CENTS" default:"500000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VERDEO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
