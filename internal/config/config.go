/**
 * @description
 * This package handles the configuration management for the remit-service. It uses
 * the Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the remit-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string  `mapstructure:"SERVER_PORT"`
	Environment          string  `mapstructure:"ENVIRONMENT"`
	DatabaseURL          string  `mapstructure:"DATABASE_URL"`
	RedisURL             string  `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string  `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string  `mapstructure:"RABBITMQ_URL"`
	EventExchange        string  `mapstructure:"EVENT_EXCHANGE"`
	InternalAPIKey       string  `mapstructure:"INTERNAL_API_KEY"`
	WiseAPIBaseURL       string  `mapstructure:"WISE_API_BASE_URL"`
	WiseAPIToken         string  `mapstructure:"WISE_API_TOKEN"`
	WiseProfileID        string  `mapstructure:"WISE_PROFILE_ID"`
	UseRealTransfers     bool    `mapstructure:"USE_REAL_TRANSFERS"`
	RateAPIBaseURL       string  `mapstructure:"RATE_API_BASE_URL"`
	RateBaseCurrency     string  `mapstructure:"RATE_BASE_CURRENCY"`
	RateCacheTTLMinutes  int     `mapstructure:"RATE_CACHE_TTL_MINUTES"`
	FeePercent           float64 `mapstructure:"FEE_PERCENT"`
	MinFee               float64 `mapstructure:"MIN_FEE"`
	MaxFee               float64 `mapstructure:"MAX_FEE"`
	PerTransactionLimit  float64 `mapstructure:"PER_TRANSACTION_LIMIT"`
	ScheduleRunnerSpec   string  `mapstructure:"SCHEDULE_RUNNER_SPEC"`

	SubmitRateLimitPerMinute int `mapstructure:"SUBMIT_RATE_LIMIT_PER_MINUTE"`
}

// IsProduction reports whether the service runs against the live provider
// environment. Sandbox placeholder recipient details are only substituted when this
// is false.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "sandbox")
	viper.SetDefault("EVENT_EXCHANGE", "remit.events")
	viper.SetDefault("WISE_API_BASE_URL", "https://api.sandbox.transferwise.tech")
	viper.SetDefault("USE_REAL_TRANSFERS", false)
	viper.SetDefault("RATE_API_BASE_URL", "https://open.er-api.com")
	viper.SetDefault("RATE_BASE_CURRENCY", "USD")
	viper.SetDefault("RATE_CACHE_TTL_MINUTES", 60)
	viper.SetDefault("FEE_PERCENT", 1.5)
	viper.SetDefault("MIN_FEE", 2.99)
	viper.SetDefault("MAX_FEE", 24.99)
	viper.SetDefault("PER_TRANSACTION_LIMIT", 2999)
	viper.SetDefault("SCHEDULE_RUNNER_SPEC", "*/5 * * * *")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "remit:rate_limit")
	viper.SetDefault("SUBMIT_RATE_LIMIT_PER_MINUTE", 0)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("ENVIRONMENT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("EVENT_EXCHANGE")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("WISE_API_BASE_URL")
	_ = viper.BindEnv("WISE_API_TOKEN")
	_ = viper.BindEnv("WISE_PROFILE_ID")
	_ = viper.BindEnv("USE_REAL_TRANSFERS")
	_ = viper.BindEnv("RATE_API_BASE_URL")
	_ = viper.BindEnv("RATE_BASE_CURRENCY")
	_ = viper.BindEnv("RATE_CACHE_TTL_MINUTES")
	_ = viper.BindEnv("FEE_PERCENT")
	_ = viper.BindEnv("MIN_FEE")
	_ = viper.BindEnv("MAX_FEE")
	_ = viper.BindEnv("PER_TRANSACTION_LIMIT")
	_ = viper.BindEnv("SCHEDULE_RUNNER_SPEC")
	_ = viper.BindEnv("SUBMIT_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	config.RateBaseCurrency = strings.ToUpper(strings.TrimSpace(config.RateBaseCurrency))
	if config.RateBaseCurrency == "" {
		config.RateBaseCurrency = "USD"
	}

	if config.RateCacheTTLMinutes <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive rate cache ttl; using 60 minutes\" ttl_minutes=%d", config.RateCacheTTLMinutes)
		config.RateCacheTTLMinutes = 60
	}

	if config.FeePercent < 0 {
		log.Printf("level=warn component=config msg=\"negative fee percent configured; coercing to zero\" fee_percent=%f", config.FeePercent)
		config.FeePercent = 0
	}
	if config.MinFee < 0 {
		log.Printf("level=warn component=config msg=\"negative min fee configured; coercing to zero\" min_fee=%f", config.MinFee)
		config.MinFee = 0
	}
	if config.MaxFee < config.MinFee {
		log.Printf("level=warn component=config msg=\"max fee below min fee; raising to min\" min_fee=%f max_fee=%f", config.MinFee, config.MaxFee)
		config.MaxFee = config.MinFee
	}
	if config.PerTransactionLimit <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive per-transaction limit; using 2999\" limit=%f", config.PerTransactionLimit)
		config.PerTransactionLimit = 2999
	}

	if config.UseRealTransfers && (strings.TrimSpace(config.WiseAPIToken) == "" || strings.TrimSpace(config.WiseProfileID) == "") {
		log.Printf("level=warn component=config msg=\"real transfers enabled without provider credentials; forcing simulated mode\" token_set=%t profile_set=%t",
			strings.TrimSpace(config.WiseAPIToken) != "",
			strings.TrimSpace(config.WiseProfileID) != "",
		)
		config.UseRealTransfers = false
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "remit:rate_limit"
	}

	return
}
