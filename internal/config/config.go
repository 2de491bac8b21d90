package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port         string
	DBConn       string
	LogLevel     string
	PriceFeedURL string

	// Policy parameters for the financial engine. Regulatory and modeling
	// constants live here, not in code.
	TargetLTV            decimal.Decimal
	CollectionEfficiency decimal.Decimal
	ALMOutflowRatio      decimal.Decimal
	ConcentrationHigh    decimal.Decimal
	ConcentrationMedium  decimal.Decimal
	ForecastMonths       int

	// SMTP settings for breach and overdue notices.
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SenderEmail   string
	RiskDeskEmail string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=lending sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		PriceFeedURL:   getEnv("PRICE_FEED_URL", "https://feeds.example.com/instrument-prices"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@lending-office.local"),
		RiskDeskEmail:  getEnv("RISK_DESK_EMAIL", "risk@lending-office.local"),
		ForecastMonths: 6,
	}

	var err error
	if cfg.TargetLTV, err = getDecimalEnv("TARGET_LTV", "75"); err != nil {
		return nil, err
	}
	if cfg.CollectionEfficiency, err = getDecimalEnv("COLLECTION_EFFICIENCY", "0.92"); err != nil {
		return nil, err
	}
	if cfg.ALMOutflowRatio, err = getDecimalEnv("ALM_OUTFLOW_RATIO", "0.70"); err != nil {
		return nil, err
	}
	if cfg.ConcentrationHigh, err = getDecimalEnv("CONCENTRATION_HIGH", "50"); err != nil {
		return nil, err
	}
	if cfg.ConcentrationMedium, err = getDecimalEnv("CONCENTRATION_MEDIUM", "30"); err != nil {
		return nil, err
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if !cfg.TargetLTV.IsPositive() {
		return nil, fmt.Errorf("TARGET_LTV must be positive, got %s", cfg.TargetLTV)
	}
	if !cfg.CollectionEfficiency.IsPositive() || cfg.CollectionEfficiency.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("COLLECTION_EFFICIENCY must be in (0,1], got %s", cfg.CollectionEfficiency)
	}
	if cfg.ALMOutflowRatio.IsNegative() {
		return nil, fmt.Errorf("ALM_OUTFLOW_RATIO must not be negative, got %s", cfg.ALMOutflowRatio)
	}
	if !cfg.ConcentrationHigh.GreaterThan(cfg.ConcentrationMedium) {
		return nil, fmt.Errorf("CONCENTRATION_HIGH (%s) must exceed CONCENTRATION_MEDIUM (%s)",
			cfg.ConcentrationHigh, cfg.ConcentrationMedium)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDecimalEnv(key, defaultVal string) (decimal.Decimal, error) {
	raw := getEnv(key, defaultVal)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}
