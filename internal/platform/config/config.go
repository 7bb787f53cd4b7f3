package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// GatewayConfig holds the payment gateway integration settings. The
// hash secret signs every outbound redirect and verifies every inbound
// callback.
type GatewayConfig struct {
	PayURL       string
	MerchantCode string
	HashSecret   string
	ReturnURL    string
	Version      string
	Command      string
	Currency     string
	Locale       string

	// MinTopupAmount is the smallest topup the gateway accepts, in
	// major units.
	MinTopupAmount decimal.Decimal
}

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// DashboardInterval is how often the market snapshot broadcaster
	// pushes to its subscribers.
	DashboardInterval time.Duration

	Gateway GatewayConfig
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "carbon-settlement-app")
	viper.SetDefault("DASHBOARD_INTERVAL", "5s")
	viper.SetDefault("GATEWAY_PAY_URL", "")
	viper.SetDefault("GATEWAY_MERCHANT_CODE", "")
	viper.SetDefault("GATEWAY_HASH_SECRET", "")
	viper.SetDefault("GATEWAY_RETURN_URL", "")
	viper.SetDefault("GATEWAY_VERSION", "2.1.0")
	viper.SetDefault("GATEWAY_COMMAND", "pay")
	viper.SetDefault("GATEWAY_CURRENCY", "VND")
	viper.SetDefault("GATEWAY_LOCALE", "vn")
	viper.SetDefault("GATEWAY_MIN_TOPUP", "10000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	dashboardIntervalStr := viper.GetString("DASHBOARD_INTERVAL")
	dashboardInterval, err := time.ParseDuration(dashboardIntervalStr)
	if err != nil || dashboardInterval <= 0 {
		dashboardInterval = 5 * time.Second
		log.Printf("Warning: Invalid value for DASHBOARD_INTERVAL ('%s'). Defaulting to %s.\n", dashboardIntervalStr, dashboardInterval.String())
	}
	cfg.DashboardInterval = dashboardInterval

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.Gateway = GatewayConfig{
		PayURL:       viper.GetString("GATEWAY_PAY_URL"),
		MerchantCode: viper.GetString("GATEWAY_MERCHANT_CODE"),
		HashSecret:   viper.GetString("GATEWAY_HASH_SECRET"),
		ReturnURL:    viper.GetString("GATEWAY_RETURN_URL"),
		Version:      viper.GetString("GATEWAY_VERSION"),
		Command:      viper.GetString("GATEWAY_COMMAND"),
		Currency:     viper.GetString("GATEWAY_CURRENCY"),
		Locale:       viper.GetString("GATEWAY_LOCALE"),
	}

	minTopupStr := viper.GetString("GATEWAY_MIN_TOPUP")
	minTopup, err := decimal.NewFromString(minTopupStr)
	if err != nil || minTopup.IsNegative() {
		minTopup = decimal.NewFromInt(10000)
		log.Printf("Warning: Invalid value for GATEWAY_MIN_TOPUP ('%s'). Defaulting to %s.\n", minTopupStr, minTopup.String())
	}
	cfg.Gateway.MinTopupAmount = minTopup

	if cfg.Gateway.PayURL == "" {
		log.Println("Warning: GATEWAY_PAY_URL not set. Topup redirects will not function.")
	}
	if cfg.Gateway.MerchantCode == "" {
		log.Println("Warning: GATEWAY_MERCHANT_CODE not set. Topup redirects will not function.")
	}
	if cfg.Gateway.HashSecret == "" {
		log.Println("Warning: GATEWAY_HASH_SECRET not set. Callback verification will reject everything.")
	}

	return cfg, nil
}
