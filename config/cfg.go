package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/growtheasy/metrics-manager/internal/analytics/ga4"
	"github.com/growtheasy/metrics-manager/internal/analytics/hubspot"
	httpapi "github.com/growtheasy/metrics-manager/internal/api/http"
	"github.com/growtheasy/metrics-manager/internal/insights"
	"github.com/growtheasy/metrics-manager/internal/metricsync"
	"github.com/growtheasy/metrics-manager/internal/store"
	"github.com/growtheasy/metrics-manager/log"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	DB         store.Config      `mapstructure:"mysql"`
	Logger     log.Config        `mapstructure:"logger"`
	HTTP       httpapi.Config    `mapstructure:"http"`
	GA4        ga4.Config        `mapstructure:"ga4"`
	HubSpot    hubspot.Config    `mapstructure:"hubspot"`
	Insights   insights.Config   `mapstructure:"insights"`
	MetricSync metricsync.Config `mapstructure:"metric_sync"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	bindEnvVars()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			// If config file doesn't exist, continue with env vars only
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/metrics-manager")
		viper.AddConfigPath("/etc/metrics-manager")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// Construct the DSN from individual env vars when it is not set
	// directly, which is how managed database platforms expose credentials.
	if config.DB.DSN == "" {
		mysqlHost := os.Getenv("MYSQL_HOST")
		mysqlPort := os.Getenv("MYSQL_PORT")
		mysqlUser := os.Getenv("MYSQL_USER")
		mysqlPassword := os.Getenv("MYSQL_PASSWORD")
		mysqlDatabase := os.Getenv("MYSQL_DATABASE")

		if mysqlHost != "" {
			if mysqlPort == "" {
				mysqlPort = "3306"
			}
			if mysqlUser != "" && mysqlPassword != "" && mysqlDatabase != "" {
				config.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8&parseTime=true",
					mysqlUser, mysqlPassword, mysqlHost, mysqlPort, mysqlDatabase)
			}
		}
	}

	return &config, nil
}

// bindEnvVars binds environment variables to config keys so flat names
// like MYSQL_DSN work alongside nested keys.
func bindEnvVars() {
	// MySQL
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	viper.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	viper.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("http.address", "HTTP_ADDRESS")
	viper.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")

	// GA4
	viper.BindEnv("ga4.property_id", "GA4_PROPERTY_ID")
	viper.BindEnv("ga4.credentials_json", "GA4_CREDENTIALS_JSON")
	viper.BindEnv("ga4.enabled", "GA4_ENABLED")

	// HubSpot
	viper.BindEnv("hubspot.access_token", "HUBSPOT_ACCESS_TOKEN")
	viper.BindEnv("hubspot.base_url", "HUBSPOT_BASE_URL")
	viper.BindEnv("hubspot.enabled", "HUBSPOT_ENABLED")

	// Insights
	viper.BindEnv("insights.api_key", "INSIGHTS_API_KEY")
	viper.BindEnv("insights.base_url", "INSIGHTS_BASE_URL")
	viper.BindEnv("insights.model", "INSIGHTS_MODEL")
	viper.BindEnv("insights.enabled", "INSIGHTS_ENABLED")

	// Metric sync worker
	viper.BindEnv("metric_sync.worker_interval", "METRIC_SYNC_WORKER_INTERVAL")
	viper.BindEnv("metric_sync.lookback_days", "METRIC_SYNC_LOOKBACK_DAYS")
	viper.BindEnv("metric_sync.lookback_orders", "METRIC_SYNC_LOOKBACK_ORDERS")
	viper.BindEnv("metric_sync.provider_timeout", "METRIC_SYNC_PROVIDER_TIMEOUT")
}
