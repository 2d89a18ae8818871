package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Carriers  CarriersConfig
	Engine    EngineConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Enabled     bool
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	QuotesTopic string
	QoS         byte
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CarrierConfig holds what the transport and adapter of one carrier need.
// Credentials are issued out of band; the engine only forwards the token.
type CarrierConfig struct {
	Enabled       bool
	RateURL       string
	ShipURL       string
	APIToken      string
	AccountNumber string
	RPS           float64
	Burst         int
}

type CarriersConfig struct {
	FedEx CarrierConfig
	DHL   CarrierConfig
	UPS   CarrierConfig
}

// ByCode returns the carrier block for "fedex", "dhl" or "ups".
func (c CarriersConfig) ByCode(code string) (CarrierConfig, bool) {
	switch strings.ToLower(code) {
	case "fedex":
		return c.FedEx, true
	case "dhl":
		return c.DHL, true
	case "ups":
		return c.UPS, true
	}
	return CarrierConfig{}, false
}

type OriginConfig struct {
	Name        string
	Company     string
	Phone       string
	Email       string
	Street1     string
	Street2     string
	City        string
	State       string
	PostalCode  string
	CountryCode string
	Currency    string
}

type FallbackRateConfig struct {
	Base  float64
	PerLb float64
}

type ClassificationConfig struct {
	Dangerous float64
	Fragile   float64
	Oversized float64
}

type EngineConfig struct {
	CarrierOrder       []string
	CarrierTimeout     time.Duration
	QuoteCacheTTL      time.Duration
	ConfigCacheTTL     time.Duration
	OfflineFallback    bool
	LowValueThreshold  float64
	PricingFile        string
	InvoiceDir         string
	Origin             OriginConfig
	Commissions        map[string]float64 // only carriers with an explicit setting
	FallbackRates      map[string]FallbackRateConfig
	Classification     ClassificationConfig
	QuoteEventsEnabled bool
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("MQTT_QUOTES_TOPIC", "rates/quoted")
	viper.SetDefault("MQTT_CLIENT_ID", "carrier-rate-engine")
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	viper.SetDefault("ENGINE_CARRIER_ORDER", "fedex,dhl,ups")
	viper.SetDefault("ENGINE_CARRIER_TIMEOUT", "10s")
	viper.SetDefault("ENGINE_QUOTE_CACHE_TTL", "5m")
	viper.SetDefault("ENGINE_CONFIG_CACHE_TTL", "1m")
	viper.SetDefault("ENGINE_LOW_VALUE_THRESHOLD", 2500)
	viper.SetDefault("ENGINE_OFFLINE_FALLBACK", true)
	viper.SetDefault("QUOTE_EVENTS_ENABLED", true)
	viper.SetDefault("ORIGIN_CURRENCY", "USD")

	for _, carrier := range []string{"FEDEX", "DHL", "UPS"} {
		viper.SetDefault(carrier+"_ENABLED", true)
		viper.SetDefault(carrier+"_RPS", 5)
		viper.SetDefault(carrier+"_BURST", 10)
	}
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Enabled:     viper.GetString("DB_HOST") != "",
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			DBName:      viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetString("REDIS_HOST") != "",
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		MQTT: MQTTConfig{
			Enabled:     viper.GetString("MQTT_BROKER") != "",
			Broker:      viper.GetString("MQTT_BROKER"),
			ClientID:    viper.GetString("MQTT_CLIENT_ID"),
			Username:    viper.GetString("MQTT_USERNAME"),
			Password:    viper.GetString("MQTT_PASSWORD"),
			QuotesTopic: viper.GetString("MQTT_QUOTES_TOPIC"),
			QoS:         byte(viper.GetUint("MQTT_QOS")),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		Carriers: CarriersConfig{
			FedEx: loadCarrier("FEDEX"),
			DHL:   loadCarrier("DHL"),
			UPS:   loadCarrier("UPS"),
		},
		Engine: EngineConfig{
			CarrierOrder:      splitList(viper.GetString("ENGINE_CARRIER_ORDER")),
			CarrierTimeout:    viper.GetDuration("ENGINE_CARRIER_TIMEOUT"),
			QuoteCacheTTL:     viper.GetDuration("ENGINE_QUOTE_CACHE_TTL"),
			ConfigCacheTTL:    viper.GetDuration("ENGINE_CONFIG_CACHE_TTL"),
			OfflineFallback:   viper.GetBool("ENGINE_OFFLINE_FALLBACK"),
			LowValueThreshold: viper.GetFloat64("ENGINE_LOW_VALUE_THRESHOLD"),
			PricingFile:       viper.GetString("PRICING_FILE"),
			InvoiceDir:        viper.GetString("INVOICE_DIR"),
			Origin: OriginConfig{
				Name:        viper.GetString("ORIGIN_NAME"),
				Company:     viper.GetString("ORIGIN_COMPANY"),
				Phone:       viper.GetString("ORIGIN_PHONE"),
				Email:       viper.GetString("ORIGIN_EMAIL"),
				Street1:     viper.GetString("ORIGIN_STREET1"),
				Street2:     viper.GetString("ORIGIN_STREET2"),
				City:        viper.GetString("ORIGIN_CITY"),
				State:       viper.GetString("ORIGIN_STATE"),
				PostalCode:  viper.GetString("ORIGIN_POSTAL_CODE"),
				CountryCode: viper.GetString("ORIGIN_COUNTRY_CODE"),
				Currency:    viper.GetString("ORIGIN_CURRENCY"),
			},
			Commissions:   loadCommissions(),
			FallbackRates: loadFallbackRates(),
			Classification: ClassificationConfig{
				Dangerous: viper.GetFloat64("SURCHARGE_DANGEROUS"),
				Fragile:   viper.GetFloat64("SURCHARGE_FRAGILE"),
				Oversized: viper.GetFloat64("SURCHARGE_OVERSIZED"),
			},
			QuoteEventsEnabled: viper.GetBool("QUOTE_EVENTS_ENABLED"),
		},
	}

	return config, nil
}

func loadCarrier(prefix string) CarrierConfig {
	return CarrierConfig{
		Enabled:       viper.GetBool(prefix + "_ENABLED"),
		RateURL:       viper.GetString(prefix + "_RATE_URL"),
		ShipURL:       viper.GetString(prefix + "_SHIP_URL"),
		APIToken:      viper.GetString(prefix + "_API_TOKEN"),
		AccountNumber: viper.GetString(prefix + "_ACCOUNT_NUMBER"),
		RPS:           viper.GetFloat64(prefix + "_RPS"),
		Burst:         viper.GetInt(prefix + "_BURST"),
	}
}

// loadCommissions only records carriers whose commission is set, so the
// calculator can tell "unset" apart from an explicit 0%.
func loadCommissions() map[string]float64 {
	commissions := make(map[string]float64)
	for _, carrier := range []string{"fedex", "dhl", "ups"} {
		key := "COMMISSION_" + strings.ToUpper(carrier) + "_PERCENT"
		if viper.IsSet(key) {
			commissions[carrier] = viper.GetFloat64(key)
		}
	}
	return commissions
}

func loadFallbackRates() map[string]FallbackRateConfig {
	rates := make(map[string]FallbackRateConfig)
	for _, carrier := range []string{"fedex", "dhl", "ups"} {
		prefix := "FALLBACK_" + strings.ToUpper(carrier)
		if viper.IsSet(prefix+"_BASE") || viper.IsSet(prefix+"_PER_LB") {
			rates[carrier] = FallbackRateConfig{
				Base:  viper.GetFloat64(prefix + "_BASE"),
				PerLb: viper.GetFloat64(prefix + "_PER_LB"),
			}
		}
	}
	return rates
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
