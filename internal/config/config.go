package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mercadito/catalog/internal/log"
)

type Application struct {
	Env  string `mapstructure:"env"  json:"env"`
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"password"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

// Upstream describes the remote product-and-price platform the service
// aggregates. Token and LocationID are required; the service refuses to start
// without them.
type Upstream struct {
	BaseURL        string `mapstructure:"base_url"        json:"base_url"`
	Token          string `mapstructure:"token"           json:"-"`
	LocationID     string `mapstructure:"location_id"     json:"location_id"`
	APIVersion     string `mapstructure:"api_version"     json:"api_version"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	// PriceInCents selects the wire unit convention for price amounts. When
	// true amounts cross the wire as integer minor units and are converted to
	// raw decimals on read and back on write. One flag governs both paths so
	// round-trips stay consistent.
	PriceInCents bool `mapstructure:"price_in_cents" json:"price_in_cents"`
}

type Catalog struct {
	SnapshotTTLSeconds int `mapstructure:"snapshot_ttl_seconds" json:"snapshot_ttl_seconds"`
	FetchPageSize      int `mapstructure:"fetch_page_size"      json:"fetch_page_size"`
	EnrichDelayMillis  int `mapstructure:"enrich_delay_millis"  json:"enrich_delay_millis"`
	DefaultLimit       int `mapstructure:"default_limit"        json:"default_limit"`
	MaxLimit           int `mapstructure:"max_limit"            json:"max_limit"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Upstream    `mapstructure:"upstream"    json:"upstream"`
	Catalog     `mapstructure:"catalog"     json:"catalog"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

func InitConfig(c context.Context, filename string) *Config {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main InitConfig").
		Str(log.KeyProcess, "init config").
		Str("filename", filename).
		Logger()

	v := viper.New()
	v.SetConfigName(filename)
	v.AddConfigPath("./env")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("application.env", "development")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 3001)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.database", 0)
	v.SetDefault("upstream.base_url", "https://services.leadconnectorhq.com")
	v.SetDefault("upstream.api_version", "2021-04-15")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("upstream.price_in_cents", true)
	v.SetDefault("catalog.snapshot_ttl_seconds", 3600)
	v.SetDefault("catalog.fetch_page_size", 100)
	v.SetDefault("catalog.enrich_delay_millis", 500)
	v.SetDefault("catalog.default_limit", 20)
	v.SetDefault("catalog.max_limit", 300)

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	if err := v.ReadInConfig(); err != nil {
		err = fmt.Errorf("error when reading config with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("read config")

	cfg := Config{}
	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	if err := v.Unmarshal(&cfg); err != nil {
		err = fmt.Errorf("error unmarshaling config with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("unmarshaled config")

	logger = logger.With().Str(log.KeyProcess, "validating config").Logger()
	if cfg.Upstream.Token == "" {
		logger.Fatal().Msg("upstream.token is required")
	}
	if cfg.Upstream.LocationID == "" {
		logger.Fatal().Msg("upstream.location_id is required")
	}
	logger.Info().Msg("validated config")

	return &cfg
}
