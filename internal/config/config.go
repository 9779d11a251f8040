package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/census-cli/pkg/census"
)

// Config holds the full application configuration.
type Config struct {
	API APIConfig `yaml:"api" mapstructure:"api"`
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// APIConfig holds Census API credentials and endpoints.
type APIConfig struct {
	Key                string  `yaml:"key" mapstructure:"key"`
	DataURL            string  `yaml:"data_url" mapstructure:"data_url"`
	Dataset            string  `yaml:"dataset" mapstructure:"dataset"`
	PopulationVariable string  `yaml:"population_variable" mapstructure:"population_variable"`
	GeocoderURL        string  `yaml:"geocoder_url" mapstructure:"geocoder_url"`
	Benchmark          string  `yaml:"benchmark" mapstructure:"benchmark"`
	Vintage            string  `yaml:"vintage" mapstructure:"vintage"`
	TigerWebURL        string  `yaml:"tigerweb_url" mapstructure:"tigerweb_url"`
	TigerWebLayer      int     `yaml:"tigerweb_layer" mapstructure:"tigerweb_layer"`
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit          float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	UserAgent          string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. The API key comes from
// CENSUS_API_KEY; every other key can be overridden with CENSUS_<SECTION>_<KEY>.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CENSUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.key", "CENSUS_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind api key")
	}

	// Defaults
	v.SetDefault("api.data_url", census.DefaultDataURL)
	v.SetDefault("api.dataset", census.DefaultDataset)
	v.SetDefault("api.population_variable", census.DefaultPopulationVariable)
	v.SetDefault("api.geocoder_url", census.DefaultGeocoderURL)
	v.SetDefault("api.benchmark", census.DefaultBenchmark)
	v.SetDefault("api.vintage", census.DefaultVintage)
	v.SetDefault("api.tigerweb_url", census.DefaultTigerWebURL)
	v.SetDefault("api.tigerweb_layer", census.DefaultTigerWebLayer)
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.user_agent", census.DefaultUserAgent)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.API.Key = strings.TrimSpace(cfg.API.Key)

	return &cfg, nil
}

// RequireAPIKey fails with census.ErrConfiguration when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.API.Key == "" {
		return eris.Wrap(census.ErrConfiguration, "CENSUS_API_KEY is not set")
	}
	return nil
}

// Timeout returns the per-request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// ClientOptions translates the API config into census client options.
func (a APIConfig) ClientOptions() []census.Option {
	opts := []census.Option{
		census.WithDataURL(a.DataURL),
		census.WithDataset(a.Dataset),
		census.WithPopulationVariable(a.PopulationVariable),
		census.WithGeocoderURL(a.GeocoderURL),
		census.WithBenchmark(a.Benchmark),
		census.WithVintage(a.Vintage),
		census.WithTigerWeb(a.TigerWebURL, a.TigerWebLayer),
		census.WithUserAgent(a.UserAgent),
	}
	if a.TimeoutSecs > 0 {
		opts = append(opts, census.WithTimeout(a.Timeout()))
	}
	if a.RateLimit > 0 {
		opts = append(opts, census.WithRateLimit(a.RateLimit))
	}
	return opts
}

// NewClient builds a census client from the configuration, failing fast when
// the API key is missing.
func (c *Config) NewClient() (*census.Client, error) {
	if err := c.RequireAPIKey(); err != nil {
		return nil, err
	}
	return census.NewClient(c.API.Key, c.API.ClientOptions()...)
}

// InitLogger initializes the global zap logger. Output goes to stderr so
// command results on stdout stay clean.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
