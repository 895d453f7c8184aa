package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Geocode      GeocodeConfig      `yaml:"geocode" mapstructure:"geocode"`
	Pipeline     PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
	Retry        RetryConfig        `yaml:"retry" mapstructure:"retry"`
	Circuit      CircuitConfig      `yaml:"circuit" mapstructure:"circuit"`
	Catalogs     CatalogsConfig     `yaml:"catalogs" mapstructure:"catalogs"`
	Crowdsourced CrowdsourcedConfig `yaml:"crowdsourced" mapstructure:"crowdsourced"`
	PhotoMeta    PhotoMetaConfig    `yaml:"photometa" mapstructure:"photometa"`
	OCR          OCRConfig          `yaml:"ocr" mapstructure:"ocr"`
	Vision       VisionConfig       `yaml:"vision" mapstructure:"vision"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Redis        RedisConfig        `yaml:"redis" mapstructure:"redis"`
	Regions      RegionsConfig      `yaml:"regions" mapstructure:"regions"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Batch        BatchConfig        `yaml:"batch" mapstructure:"batch"`
	Monitoring   MonitoringConfig   `yaml:"monitoring" mapstructure:"monitoring"`
}

// LogConfig configures logging. FilePath tees output to a rotating file.
type LogConfig struct {
	Level          string `yaml:"level" mapstructure:"level"`
	Format         string `yaml:"format" mapstructure:"format"`
	FilePath       string `yaml:"file_path" mapstructure:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb" mapstructure:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups" mapstructure:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" mapstructure:"file_max_age_days"`
}

// GeocodeConfig configures the Nominatim client and its answer cache.
type GeocodeConfig struct {
	BaseURL      string           `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string           `yaml:"user_agent" mapstructure:"user_agent"`
	Email        string           `yaml:"email" mapstructure:"email"`
	RateLimitRPS float64          `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	TimeoutSecs  int              `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Reverse      bool             `yaml:"reverse" mapstructure:"reverse"`
	Cache        GeocodeCacheConf `yaml:"cache" mapstructure:"cache"`
}

// GeocodeCacheConf selects the cache backend: none, redis or store.
type GeocodeCacheConf struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// PipelineConfig tunes the resolver.
type PipelineConfig struct {
	ProviderDelayMs     int               `yaml:"provider_delay_ms" mapstructure:"provider_delay_ms"`
	ProviderTimeoutSecs int               `yaml:"provider_timeout_secs" mapstructure:"provider_timeout_secs"`
	TieBreak            string            `yaml:"tie_break" mapstructure:"tie_break"`
	SessionTTLMins      int               `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	Stages              []string          `yaml:"stages" mapstructure:"stages"`
	Locales             map[string]string `yaml:"locales" mapstructure:"locales"`
	Weights             address.Weights   `yaml:"weights" mapstructure:"weights"`
}

// RetryConfig is the provider retry schedule.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	Jitter           float64 `yaml:"jitter" mapstructure:"jitter"`
}

// CircuitConfig configures per-provider circuit breakers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// CatalogsConfig holds the two authoritative catalog endpoints.
type CatalogsConfig struct {
	A CatalogConfig `yaml:"a" mapstructure:"a"`
	B CatalogConfig `yaml:"b" mapstructure:"b"`
}

// CatalogConfig is one catalog endpoint. URLTemplate contains {id} and
// optionally {region} and {number}.
type CatalogConfig struct {
	URLTemplate string `yaml:"url_template" mapstructure:"url_template"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
}

// CrowdsourcedConfig configures the crowdsourced map provider.
type CrowdsourcedConfig struct {
	URLTemplate string  `yaml:"url_template" mapstructure:"url_template"`
	LatOffset   float64 `yaml:"lat_offset" mapstructure:"lat_offset"`
	LngOffset   float64 `yaml:"lng_offset" mapstructure:"lng_offset"`
}

// PhotoMetaConfig configures the photo-metadata service.
type PhotoMetaConfig struct {
	URLTemplate string `yaml:"url_template" mapstructure:"url_template"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
}

// OCRConfig selects the OCR backend: local (tesseract) or mistral.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	Languages     string `yaml:"languages" mapstructure:"languages"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// VisionConfig configures the AI vision provider.
type VisionConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Key        string `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	Model      string `yaml:"model" mapstructure:"model"`
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxImagePx int    `yaml:"max_image_px" mapstructure:"max_image_px"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	RetryDays   int    `yaml:"retry_days" mapstructure:"retry_days"`
}

// RedisConfig holds the Redis connection URL for the geocode cache.
type RedisConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// RegionsConfig points at an optional YAML region override file.
type RegionsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the operator HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// BatchConfig configures batch runs.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// MonitoringConfig configures batch alerting. A zero threshold disables
// that alert.
type MonitoringConfig struct {
	WebhookURL             string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold   float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	ExhaustedRateThreshold float64 `yaml:"exhausted_rate_threshold" mapstructure:"exhausted_rate_threshold"`
}

// ProviderDelay is the pause between provider calls for one object.
func (c PipelineConfig) ProviderDelay() time.Duration {
	return time.Duration(c.ProviderDelayMs) * time.Millisecond
}

// ProviderTimeout is the per-stage deadline.
func (c PipelineConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSecs) * time.Second
}

// Timeout is the per-request geocoder deadline.
func (c GeocodeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Schedule converts the retry section for provider policies.
func (c RetryConfig) Schedule() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: time.Duration(c.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(c.MaxBackoffMs) * time.Millisecond,
		Multiplier:     c.Multiplier,
		JitterFraction: c.Jitter,
	}
}

// Breaker converts the circuit section for provider breakers.
func (c CircuitConfig) Breaker() resilience.BreakerConfig {
	b := resilience.DefaultBreakerConfig()
	if c.FailureThreshold > 0 {
		b.FailureThreshold = c.FailureThreshold
	}
	if c.ResetTimeoutSecs > 0 {
		b.CoolDown = time.Duration(c.ResetTimeoutSecs) * time.Second
	}
	return b
}

// Load reads .env, then configuration from file and environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		zap.L().Debug("config: .env not loaded", zap.Error(err))
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GEORESOLVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	w := address.DefaultWeights()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file_max_size_mb", 100)
	v.SetDefault("log.file_max_backups", 3)
	v.SetDefault("log.file_max_age_days", 30)

	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "georesolve/1.0")
	v.SetDefault("geocode.rate_limit_rps", 1.0)
	v.SetDefault("geocode.timeout_secs", 15)
	v.SetDefault("geocode.reverse", true)
	v.SetDefault("geocode.cache.driver", "store")
	v.SetDefault("geocode.cache.ttl_hours", 24*30)

	v.SetDefault("pipeline.provider_delay_ms", 1000)
	v.SetDefault("pipeline.provider_timeout_secs", 20)
	v.SetDefault("pipeline.tie_break", "prefer_a")
	v.SetDefault("pipeline.session_ttl_mins", 60)
	v.SetDefault("pipeline.weights.gazetteer", w.Gazetteer)
	v.SetDefault("pipeline.weights.vowel_ratio", w.VowelRatio)
	v.SetDefault("pipeline.weights.postcode", w.Postcode)
	v.SetDefault("pipeline.weights.adjacency", w.Adjacency)
	v.SetDefault("pipeline.weights.degenerate", w.Degenerate)
	v.SetDefault("pipeline.weights.consonant_run", w.ConsonantRun)
	v.SetDefault("pipeline.weights.number_prefix", w.NumberPrefix)
	v.SetDefault("pipeline.weights.number_occurrence", w.NumberOccurrence)
	v.SetDefault("pipeline.weights.building_gazetteer", w.BuildingGazetteer)
	v.SetDefault("pipeline.weights.threshold_uk", w.ThresholdUK)
	v.SetDefault("pipeline.weights.threshold_fr", w.ThresholdFR)
	v.SetDefault("pipeline.weights.top_k", w.TopK)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 1000)
	v.SetDefault("retry.max_backoff_ms", 20000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter", 0.2)

	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 60)

	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.languages", "fra+eng")
	v.SetDefault("ocr.mistral_model", "mistral-ocr-latest")

	v.SetDefault("vision.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("vision.max_tokens", 1024)
	v.SetDefault("vision.max_image_px", 1568)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "georesolve.db")
	v.SetDefault("store.retry_days", 7)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("batch.max_concurrent", 4)

	v.SetDefault("monitoring.failure_rate_threshold", 0.10)
	v.SetDefault("monitoring.exhausted_rate_threshold", 0.50)
}

// InitLogger initializes the global zap logger. When FilePath is set, log
// lines also go to a size-rotated file.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	if cfg.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxBackups: cfg.FileMaxBackups,
			MaxAge:     cfg.FileMaxAgeDays,
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			zapCfg.Level,
		)
		logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	zap.ReplaceGlobals(logger)
	return nil
}
