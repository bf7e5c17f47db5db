package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig                `yaml:"data" mapstructure:"data"`
	Cache    CacheConfig               `yaml:"cache" mapstructure:"cache"`
	Defaults model.AffordabilityInputs `yaml:"defaults" mapstructure:"defaults"`
	Store    StoreConfig               `yaml:"store" mapstructure:"store"`
	Server   ServerConfig              `yaml:"server" mapstructure:"server"`
	Log      LogConfig                 `yaml:"log" mapstructure:"log"`
	Profiles ProfilesConfig            `yaml:"profiles" mapstructure:"profiles"`
}

// DataConfig locates the housing and centroid tables. A path wins over a URL
// for the same table.
type DataConfig struct {
	HousingPath   string `yaml:"housing_path" mapstructure:"housing_path"`
	HousingURL    string `yaml:"housing_url" mapstructure:"housing_url"`
	CentroidsPath string `yaml:"centroids_path" mapstructure:"centroids_path"`
	CentroidsURL  string `yaml:"centroids_url" mapstructure:"centroids_url"`
	ZCTAShapefile string `yaml:"zcta_shapefile" mapstructure:"zcta_shapefile"`
	TempDir       string `yaml:"temp_dir" mapstructure:"temp_dir"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// Sources resolves the configured locations into loader sources.
func (d DataConfig) Sources() dataset.Sources {
	return dataset.Sources{
		Housing:       firstNonEmpty(d.HousingPath, d.HousingURL),
		Centroids:     firstNonEmpty(d.CentroidsPath, d.CentroidsURL),
		ZCTAShapefile: d.ZCTAShapefile,
	}
}

// CacheConfig sizes the shared table cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// TTL returns the entry lifetime; zero means entries never expire.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ProfilesConfig points at an optional YAML file of preset profiles.
type ProfilesConfig struct {
	PresetsPath string `yaml:"presets_path" mapstructure:"presets_path"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ZIPAFFORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.housing_path", "")
	v.SetDefault("data.housing_url", "")
	v.SetDefault("data.centroids_path", "")
	v.SetDefault("data.centroids_url", "")
	v.SetDefault("data.zcta_shapefile", "")
	v.SetDefault("data.temp_dir", "/tmp/zipafford")
	v.SetDefault("data.user_agent", "zipafford/1.0")
	v.SetDefault("data.timeout_secs", 120)
	v.SetDefault("data.max_retries", 3)
	v.SetDefault("cache.max_entries", 8)
	v.SetDefault("cache.ttl_minutes", 60)
	setInputDefaults(v, model.DefaultInputs())
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "zipafford.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("profiles.presets_path", "")

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

	return &cfg, nil
}

// setInputDefaults registers every profile field so env overrides such as
// ZIPAFFORD_DEFAULTS_ANNUAL_INCOME bind. Annual income has no default.
func setInputDefaults(v *viper.Viper, in model.AffordabilityInputs) {
	v.SetDefault("defaults.down_payment_pct", in.DownPaymentPct)
	v.SetDefault("defaults.interest_rate", in.InterestRate)
	v.SetDefault("defaults.loan_term_years", in.LoanTermYears)
	v.SetDefault("defaults.property_tax_rate", in.PropertyTaxRate)
	v.SetDefault("defaults.annual_insurance", in.AnnualInsurance)
	v.SetDefault("defaults.monthly_debts", in.MonthlyDebts)
	v.SetDefault("defaults.hoa_monthly", in.HOAMonthly)
	v.SetDefault("defaults.front_dti_pct", in.FrontDTIPct)
	v.SetDefault("defaults.back_dti_pct", in.BackDTIPct)
	v.SetDefault("defaults.monthly_spending", in.MonthlySpending)
	v.SetDefault("defaults.include_spending", in.IncludeSpending)
	v.SetDefault("defaults.use_manual_max_price", in.UseManualMaxPrice)
	v.BindEnv("defaults.annual_income")    //nolint:errcheck
	v.BindEnv("defaults.manual_max_price") //nolint:errcheck
}

// Validate checks the settings a command mode needs. Modes: "data" (any
// command that reads the housing tables), "store" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "data":
		errs = append(errs, c.validateData()...)
	case "store":
		errs = append(errs, c.validateStore()...)
	case "serve":
		errs = append(errs, c.validateData()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Cache.MaxEntries < 0 {
		errs = append(errs, "cache.max_entries must be >= 0")
	}
	if c.Cache.TTLMinutes < 0 {
		errs = append(errs, "cache.ttl_minutes must be >= 0")
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateData() []string {
	var errs []string
	src := c.Data.Sources()
	if src.Housing == "" {
		errs = append(errs, "data.housing_path or data.housing_url is required")
	}
	if src.Centroids == "" && src.ZCTAShapefile == "" {
		errs = append(errs, "data.centroids_path, data.centroids_url or data.zcta_shapefile is required")
	}
	return errs
}

func (c *Config) validateStore() []string {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return []string{"store.sqlite_path is required for the sqlite driver"}
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required for the postgres driver"}
		}
	default:
		return []string{`store.driver must be "sqlite" or "postgres"`}
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

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
