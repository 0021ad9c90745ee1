// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Dexes     []DexConfig     `mapstructure:"dexes"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	OpenOcean OpenOceanConfig `mapstructure:"openocean"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ChainConfig holds EVM chain and node configuration.
type ChainConfig struct {
	HTTPURL           string  `mapstructure:"http_url"`
	ChainID           uint64  `mapstructure:"chain_id"`
	NativeSymbol      string  `mapstructure:"native_symbol"`
	WrappedNative     string  `mapstructure:"wrapped_native"`
	NativeUSDFallback float64 `mapstructure:"native_usd_fallback"`
	MaxGasPriceGwei   float64 `mapstructure:"max_gas_price_gwei"`
}

// WrappedNativeHex returns the wrapped native token address as common.Address.
func (c *ChainConfig) WrappedNativeHex() common.Address {
	return common.HexToAddress(c.WrappedNative)
}

// NativeUSDFallbackDecimal returns the fallback native/USD price as decimal.
func (c *ChainConfig) NativeUSDFallbackDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.NativeUSDFallback)
}

// DexConfig describes one on-chain venue. Kind is "v2" or "v3"; v3 venues
// require a quoter address, v2 venues a factory.
type DexConfig struct {
	Name        string `mapstructure:"name"`
	Kind        string `mapstructure:"kind"`
	Router      string `mapstructure:"router"`
	Factory     string `mapstructure:"factory"`
	Quoter      string `mapstructure:"quoter"`
	GasEstimate uint64 `mapstructure:"gas_estimate"`
}

// RouterHex returns the router address as common.Address.
func (c *DexConfig) RouterHex() common.Address {
	return common.HexToAddress(c.Router)
}

// FactoryHex returns the factory address as common.Address.
func (c *DexConfig) FactoryHex() common.Address {
	return common.HexToAddress(c.Factory)
}

// QuoterHex returns the quoter address as common.Address.
func (c *DexConfig) QuoterHex() common.Address {
	return common.HexToAddress(c.Quoter)
}

// RoutingConfig holds quoting, selection and swap-construction thresholds.
type RoutingConfig struct {
	MaxPriceImpactPct       float64       `mapstructure:"max_price_impact_pct"`
	SplitCandidateImpactPct float64       `mapstructure:"split_candidate_impact_pct"`
	MinOutputImprovementPct float64       `mapstructure:"min_output_improvement_pct"`
	MinLiquidityUSD         float64       `mapstructure:"min_liquidity_usd"`
	MinOutputUSD            float64       `mapstructure:"min_output_usd"`
	BatchSize               int           `mapstructure:"batch_size"`
	BatchDelay              time.Duration `mapstructure:"batch_delay"`
	CacheTTL                time.Duration `mapstructure:"cache_ttl"`
	SlippageBps             int64         `mapstructure:"slippage_bps"`
	DeadlineMinutes         int           `mapstructure:"deadline_minutes"`
}

// MaxPriceImpactDecimal returns the hard impact ceiling as decimal percent.
func (c *RoutingConfig) MaxPriceImpactDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxPriceImpactPct)
}

// SplitCandidateImpactDecimal returns the split eligibility cutoff as decimal percent.
func (c *RoutingConfig) SplitCandidateImpactDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SplitCandidateImpactPct)
}

// MinOutputUSDDecimal returns the dust threshold as decimal dollars.
func (c *RoutingConfig) MinOutputUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinOutputUSD)
}

// MinLiquidityUSDDecimal returns the implied liquidity floor as decimal dollars.
func (c *RoutingConfig) MinLiquidityUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinLiquidityUSD)
}

// OpenOceanConfig holds aggregator API configuration.
type OpenOceanConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	BaseURL              string        `mapstructure:"base_url"`
	ChainName            string        `mapstructure:"chain_name"`
	ReferrerAddress      string        `mapstructure:"referrer_address"`
	ReferrerFeePct       float64       `mapstructure:"referrer_fee_pct"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	GasPriceFallbackGwei float64       `mapstructure:"gas_price_fallback_gwei"`
	RequestsPerSecond    float64       `mapstructure:"requests_per_second"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ROO")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ROO_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ROO_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ROO_LOG_LEVEL", "LOG_LEVEL")

	// Chain
	v.BindEnv("chain.http_url", "ROO_CHAIN_HTTP_URL", "CHAIN_HTTP_URL")
	v.BindEnv("chain.chain_id", "ROO_CHAIN_ID", "CHAIN_ID")
	v.BindEnv("chain.wrapped_native", "ROO_WRAPPED_NATIVE")
	v.BindEnv("chain.native_usd_fallback", "ROO_NATIVE_USD_FALLBACK")

	// Routing
	v.BindEnv("routing.max_price_impact_pct", "ROO_MAX_PRICE_IMPACT_PCT")
	v.BindEnv("routing.slippage_bps", "ROO_SLIPPAGE_BPS")
	v.BindEnv("routing.cache_ttl", "ROO_QUOTE_CACHE_TTL")

	// OpenOcean
	v.BindEnv("openocean.enabled", "ROO_OPENOCEAN_ENABLED")
	v.BindEnv("openocean.base_url", "ROO_OPENOCEAN_BASE_URL")
	v.BindEnv("openocean.referrer_address", "ROO_OPENOCEAN_REFERRER")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ROO_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ROO_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ROO_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "rooswap-router")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Cronos mainnet defaults
	v.SetDefault("chain.http_url", "https://evm.cronos.org")
	v.SetDefault("chain.chain_id", 25)
	v.SetDefault("chain.native_symbol", "CRO")
	v.SetDefault("chain.wrapped_native", "0x5C7F8A570d578ED84E63fdFA7b1eE72dEae1AE23")
	v.SetDefault("chain.native_usd_fallback", 0.08)
	v.SetDefault("chain.max_gas_price_gwei", 10000)

	// Cronos DEX defaults
	v.SetDefault("dexes", []map[string]any{
		{
			"name":         "VVS Finance",
			"kind":         "v2",
			"router":       "0x145863Eb42Cf62847A6Ca784e6416C1682b1b2Ae",
			"factory":      "0x3B44B2a187a7b3824131F8db5a74194D0a42Fc15",
			"gas_estimate": 150000,
		},
		{
			"name":         "MM Finance",
			"kind":         "v2",
			"router":       "0x145677FC4d9b8F19B5D56d1820c48e0443049a30",
			"factory":      "0xd590cC180601AEcD6eeADD9B7f2B7611519544f4",
			"gas_estimate": 150000,
		},
		{
			"name":         "CronaSwap",
			"kind":         "v2",
			"router":       "0xcd7d16fB918511BF7269eC4f48d61D79Fb26f918",
			"factory":      "0x73A48f8f521EB31c55c0e1274dB0898dE599Cb11",
			"gas_estimate": 150000,
		},
		{
			"name":         "VVS V3",
			"kind":         "v3",
			"router":       "0x8aC5e7C6a5301DA1b2720b3a16Cd8cB80d47EBAA",
			"quoter":       "0x317B98A1Aa4aA90De51358dda29B1f2DF5A4B1b1",
			"gas_estimate": 180000,
		},
	})

	// Routing defaults
	v.SetDefault("routing.max_price_impact_pct", 15)
	v.SetDefault("routing.split_candidate_impact_pct", 10)
	v.SetDefault("routing.min_output_improvement_pct", 0.5)
	v.SetDefault("routing.min_liquidity_usd", 1000)
	v.SetDefault("routing.min_output_usd", 0.001)
	v.SetDefault("routing.batch_size", 2)
	v.SetDefault("routing.batch_delay", "500ms")
	v.SetDefault("routing.cache_ttl", "10s")
	v.SetDefault("routing.slippage_bps", 50)
	v.SetDefault("routing.deadline_minutes", 20)

	// OpenOcean defaults
	v.SetDefault("openocean.enabled", true)
	v.SetDefault("openocean.base_url", "https://open-api.openocean.finance/v3")
	v.SetDefault("openocean.chain_name", "cronos")
	v.SetDefault("openocean.referrer_fee_pct", 0.01)
	v.SetDefault("openocean.request_timeout", "10s")
	v.SetDefault("openocean.gas_price_fallback_gwei", 5)
	v.SetDefault("openocean.requests_per_second", 2)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "rooswap-router")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Chain.HTTPURL == "" {
		return fmt.Errorf("chain.http_url is required")
	}
	if c.Chain.ChainID == 0 {
		return fmt.Errorf("chain.chain_id is required")
	}
	if !common.IsHexAddress(c.Chain.WrappedNative) {
		return fmt.Errorf("invalid chain.wrapped_native: %s", c.Chain.WrappedNative)
	}
	if len(c.Dexes) == 0 {
		return fmt.Errorf("at least one dex must be configured")
	}
	for i, d := range c.Dexes {
		if d.Name == "" {
			return fmt.Errorf("dexes[%d].name is required", i)
		}
		if d.Kind != "v2" && d.Kind != "v3" {
			return fmt.Errorf("dexes[%d].kind must be v2 or v3, got %q", i, d.Kind)
		}
		if !common.IsHexAddress(d.Router) {
			return fmt.Errorf("dexes[%d]: invalid router address %s", i, d.Router)
		}
	}
	if c.Routing.BatchSize <= 0 {
		return fmt.Errorf("routing.batch_size must be positive")
	}
	if c.Routing.SlippageBps < 0 || c.Routing.SlippageBps > 10000 {
		return fmt.Errorf("routing.slippage_bps out of range: %d", c.Routing.SlippageBps)
	}
	if c.OpenOcean.Enabled && c.OpenOcean.BaseURL == "" {
		return fmt.Errorf("openocean.base_url is required when openocean.enabled")
	}
	return nil
}
