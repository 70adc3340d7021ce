package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// APIConfig points at the score backend.
type APIConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeoConfig configures the geometry sources.
type GeoConfig struct {
	PrimaryURL  string `yaml:"primary_url" mapstructure:"primary_url"`
	FallbackURL string `yaml:"fallback_url" mapstructure:"fallback_url"`
	// SourcesFile optionally points at a YAML file overriding the URLs.
	SourcesFile string `yaml:"sources_file" mapstructure:"sources_file"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig configures the local geometry cache.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ServerConfig configures the local serve surface.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and the DIAG360 environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DIAG360")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "https://api.diag360.fr/api/v1")
	v.SetDefault("api.timeout_secs", 15)
	v.SetDefault("geo.primary_url", "https://unpkg.com/@etalab/decoupage-administratif/data/epci-50m.geojson")
	v.SetDefault("geo.fallback_url", "https://geo.api.gouv.fr/epcis?format=geojson&geometry=contour")
	v.SetDefault("geo.timeout_secs", 30)
	v.SetDefault("cache.path", "territory-cache.db")
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Geo.SourcesFile != "" {
		if err := applySourcesFile(&cfg.Geo); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// GeoSource is one named geometry source in a sources file.
type GeoSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Role string `yaml:"role"`
}

// applySourcesFile overrides the geo URLs from a YAML list of sources. The
// first source with role "primary" and the first with role "fallback" win.
func applySourcesFile(geo *GeoConfig) error {
	data, err := os.ReadFile(geo.SourcesFile)
	if err != nil {
		return eris.Wrapf(err, "config: read sources file %s", geo.SourcesFile)
	}

	var sources []GeoSource
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return eris.Wrapf(err, "config: parse sources file %s", geo.SourcesFile)
	}

	for _, src := range sources {
		switch src.Role {
		case "primary":
			if src.URL != "" {
				geo.PrimaryURL = src.URL
			}
		case "fallback":
			if src.URL != "" {
				geo.FallbackURL = src.URL
			}
		default:
			return eris.Errorf("config: source %q has unknown role %q", src.Name, src.Role)
		}
	}
	return nil
}

// Validate checks the fields the given mode depends on. Modes are command
// groups: "map" needs the geo sources and backend, "serve" additionally
// needs a usable port, "ingest" only needs the backend.
func (c *Config) Validate(mode string) error {
	var problems []string

	needsAPI := func() {
		if c.API.BaseURL == "" {
			problems = append(problems, "api.base_url is required")
		}
	}
	needsGeo := func() {
		if c.Geo.PrimaryURL == "" {
			problems = append(problems, "geo.primary_url is required")
		}
		if c.Geo.TimeoutSecs <= 0 {
			problems = append(problems, "geo.timeout_secs must be > 0")
		}
	}

	switch mode {
	case "map":
		needsAPI()
		needsGeo()
	case "serve":
		needsAPI()
		needsGeo()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
	case "ingest":
		needsAPI()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Cache.TTLHours < 0 {
		problems = append(problems, "cache.ttl_hours must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
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
	zap.ReplaceGlobals(logger)

	return nil
}
