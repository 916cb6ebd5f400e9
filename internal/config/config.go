package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	Indicators Indicators

	// Wikimedia pageview enrichment.
	WikiEnabled   bool
	WikiArticle   string
	WikiTimeout   time.Duration
	WikiCacheSize int
}

// Indicators carries the model parameters, read from INDICATOR_* variables.
type Indicators struct {
	SerialIntervalHorizon int     `envconfig:"SI_HORIZON" default:"14" validate:"gte=1,lte=365"`
	SerialIntervalMean    float64 `envconfig:"SI_MEAN" default:"2.6" validate:"gt=0"`
	SerialIntervalSD      float64 `envconfig:"SI_SD" default:"1.5" validate:"gt=0"`
	MinDenominator        float64 `envconfig:"MIN_DENOMINATOR" default:"1" validate:"gt=0"`
	SigmoidSteepness      float64 `envconfig:"SIGMOID_STEEPNESS" default:"4" validate:"gt=0"`
	DefaultVaccination    float64 `envconfig:"DEFAULT_VACCINATION" default:"50" validate:"gte=0,lte=100"`
	DefaultPopulation     float64 `envconfig:"DEFAULT_POPULATION" default:"100000" validate:"gte=0"`
	CacheSize             int     `envconfig:"CACHE_SIZE" default:"32" validate:"gte=1"`
}

// Params converts the settings into the engine's parameter set.
func (ind Indicators) Params() domain.Params {
	p := domain.DefaultParams()
	p.SerialInterval = domain.SerialIntervalParams{
		Horizon: ind.SerialIntervalHorizon,
		Mean:    ind.SerialIntervalMean,
		SD:      ind.SerialIntervalSD,
	}
	p.MinDenominator = ind.MinDenominator
	p.SC.Steepness = ind.SigmoidSteepness
	p.Lumen.DefaultVaccination = ind.DefaultVaccination
	p.Lumen.DefaultPopulation = ind.DefaultPopulation
	return p
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	indicators, err := loadIndicators()
	if err != nil {
		return nil, err
	}

	wikiTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("WIKI_TIMEOUT", "5s"))
	if err != nil || wikiTimeout <= 0 {
		return nil, errors.New("invalid WIKI_TIMEOUT")
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "flu-observations"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flu-indicators"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "lumen-indicators"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		Indicators:         indicators,

		WikiEnabled:   os.Getenv("WIKI_ENABLED") == "true",
		WikiArticle:   sharedcfg.EnvOrDefault("WIKI_ARTICLE", domain.DefaultWikiArticle),
		WikiTimeout:   wikiTimeout,
		WikiCacheSize: parseWikiCacheSize(),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.WikiEnabled && cfg.WikiArticle == "" {
		return nil, errors.New("WIKI_ENABLED is true but WIKI_ARTICLE is empty")
	}

	return cfg, nil
}

func loadIndicators() (Indicators, error) {
	var ind Indicators
	if err := envconfig.Process("INDICATOR", &ind); err != nil {
		return Indicators{}, fmt.Errorf("parse INDICATOR_* settings: %w", err)
	}
	if err := validator.New().Struct(ind); err != nil {
		return Indicators{}, fmt.Errorf("invalid INDICATOR_* settings: %w", err)
	}
	return ind, nil
}

func parseWikiCacheSize() int {
	if s := os.Getenv("WIKI_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
