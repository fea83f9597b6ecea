package config

import (
	"flag"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddress     = ":8080"
	defaultDatabaseDSN       = ""
	defaultGatewayAddr       = "https://api.gateway.test"
	defaultLogLevel          = "debug"
	defaultCurrency          = "INR"
	defaultReconcileInterval = 30 * time.Second
	defaultReconcileCutoff   = 15 * time.Minute
)

type Config struct {
	ServerAddr        string
	DatabaseDSN       string
	GatewayAddr       string
	GatewayKeyID      string
	GatewayKeySecret  string
	WebhookSecret     string
	AdminEmail        string
	AdminPassword     string
	Currency          string
	LogLevel          string
	ReconcileInterval time.Duration
	ReconcileCutoff   time.Duration
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "storefront server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "storefront database DSN")
		flag.StringVar(&cfg.GatewayAddr, "g", defaultGatewayAddr, "payment gateway address")
		flag.StringVar(&cfg.Currency, "c", defaultCurrency, "store currency code")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.DurationVar(&cfg.ReconcileInterval, "i", defaultReconcileInterval, "order reconcile poll interval")
		flag.DurationVar(&cfg.ReconcileCutoff, "t", defaultReconcileCutoff, "age after which a pending order is reconciled")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if gatewayAddrEnv := os.Getenv("GATEWAY_ADDRESS"); gatewayAddrEnv != "" {
			cfg.GatewayAddr = gatewayAddrEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		// secrets come from environment only
		cfg.GatewayKeyID = os.Getenv("GATEWAY_KEY_ID")
		cfg.GatewayKeySecret = os.Getenv("GATEWAY_KEY_SECRET")
		cfg.WebhookSecret = os.Getenv("GATEWAY_WEBHOOK_SECRET")
		cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

		singleton = &cfg
	})

	return singleton, nil
}
