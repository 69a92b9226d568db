package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "JUSTGOLD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "JUSTGOLD_DB_DSN"
	EnvDBHost = "JUSTGOLD_DB_HOST"
	EnvDBUser = "JUSTGOLD_DB_USER"
	EnvDBName = "JUSTGOLD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cloudinary   CloudinaryConfig
	Media        MediaConfig
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
	Env          string `envconfig:"JUSTGOLD_APP_ENV" required:"true"`
	Port         string `envconfig:"JUSTGOLD_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"JUSTGOLD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JUSTGOLD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JUSTGOLD_DB_DSN"`
	Driver string `envconfig:"JUSTGOLD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JUSTGOLD_DB_HOST"`
	LegacyPort     int    `envconfig:"JUSTGOLD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JUSTGOLD_DB_USER"`
	LegacyPassword string `envconfig:"JUSTGOLD_DB_PASSWORD"`
	LegacyName     string `envconfig:"JUSTGOLD_DB_NAME"`
	LegacySSLMode  string `envconfig:"JUSTGOLD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JUSTGOLD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JUSTGOLD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JUSTGOLD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JUSTGOLD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JUSTGOLD_REDIS_URL"`
	Address      string        `envconfig:"JUSTGOLD_REDIS_ADDR"`
	Password     string        `envconfig:"JUSTGOLD_REDIS_PASSWORD"`
	DB           int           `envconfig:"JUSTGOLD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JUSTGOLD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JUSTGOLD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JUSTGOLD_REDIS_DIAL_TIMEOUT" default:"2s"`
	ReadTimeout  time.Duration `envconfig:"JUSTGOLD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JUSTGOLD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret         string        `envconfig:"JUSTGOLD_JWT_SECRET" required:"true"`
	Issuer         string        `envconfig:"JUSTGOLD_JWT_ISSUER" default:"justgold"`
	AccessTokenTTL time.Duration `envconfig:"JUSTGOLD_JWT_ACCESS_TOKEN_TTL" default:"168h"`
}

type CloudinaryConfig struct {
	CloudName  string `envconfig:"JUSTGOLD_CLOUDINARY_CLOUD_NAME"`
	APIKey     string `envconfig:"JUSTGOLD_CLOUDINARY_API_KEY"`
	APISecret  string `envconfig:"JUSTGOLD_CLOUDINARY_API_SECRET"`
	BaseFolder string `envconfig:"JUSTGOLD_CLOUDINARY_BASE_FOLDER" default:"just_gold/products"`
}

type MediaConfig struct {
	BaseURL         string        `envconfig:"JUSTGOLD_MEDIA_BASE_URL"`
	ListingCacheTTL time.Duration `envconfig:"JUSTGOLD_LISTING_CACHE_TTL" default:"1m"`
	MaxUploadMB     int           `envconfig:"JUSTGOLD_MAX_UPLOAD_MB" default:"100"`
	MaxVariants     int           `envconfig:"JUSTGOLD_MAX_VARIANTS" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JUSTGOLD_AUTO_MIGRATE" default:"false"`
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
