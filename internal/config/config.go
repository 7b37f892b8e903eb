package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Refstore RefstoreConfig `yaml:"refstore" mapstructure:"refstore"`
	Hosts    HostsConfig    `yaml:"hosts" mapstructure:"hosts"`
	Runs     RunsConfig     `yaml:"runs" mapstructure:"runs"`
	Predict  PredictConfig  `yaml:"predict" mapstructure:"predict"`
	BuildDB  BuildDBConfig  `yaml:"builddb" mapstructure:"builddb"`
	Taxdump  TaxdumpConfig  `yaml:"taxdump" mapstructure:"taxdump"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RefstoreConfig configures the reference record backend.
type RefstoreConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// HostsConfig configures the host taxonomy store.
type HostsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RunsConfig configures the run log.
type RunsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PredictConfig configures prediction output.
type PredictConfig struct {
	OutDir       string `yaml:"out_dir" mapstructure:"out_dir"`
	DisplayLimit int    `yaml:"display_limit" mapstructure:"display_limit"`
	// DeriveRecordFamily resolves a record's declared host through the
	// taxonomy store when the record carries no host_family.
	DeriveRecordFamily bool `yaml:"derive_record_family" mapstructure:"derive_record_family"`
}

// BuildDBConfig configures curated source ingestion.
type BuildDBConfig struct {
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	SkipRows    int    `yaml:"skip_rows" mapstructure:"skip_rows"`
	Charset     string `yaml:"charset" mapstructure:"charset"`
	MappingPath string `yaml:"mapping_path" mapstructure:"mapping_path"`
}

// TaxdumpConfig configures the NCBI taxonomy fetch.
type TaxdumpConfig struct {
	URL  string `yaml:"url" mapstructure:"url"`
	Root string `yaml:"root" mapstructure:"root"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentInputs int `yaml:"max_concurrent_inputs" mapstructure:"max_concurrent_inputs"`
}

// ServerConfig configures the HTTP prediction server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ISYMPRED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("refstore.backend", "tsv")
	v.SetDefault("refstore.path", "symbiont_db.tsv")
	v.SetDefault("hosts.path", "hosts.db")
	v.SetDefault("runs.path", "runs.db")
	v.SetDefault("predict.out_dir", ".")
	v.SetDefault("predict.display_limit", 10)
	v.SetDefault("builddb.skip_rows", 0)
	v.SetDefault("builddb.charset", "utf-8")
	v.SetDefault("taxdump.url", "https://ftp.ncbi.nlm.nih.gov/pub/taxonomy/taxdmp.zip")
	v.SetDefault("taxdump.root", "Insecta")
	v.SetDefault("batch.max_concurrent_inputs", 4)
	v.SetDefault("server.port", 8080)
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

	return &cfg, nil
}

// Validate checks the configuration for the given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkRefstore := func() {
		switch c.Refstore.Backend {
		case "", "tsv", "sqlite":
			if c.Refstore.Path == "" {
				problems = append(problems, "refstore.path is required")
			}
		case "postgres":
			if c.Refstore.DatabaseURL == "" {
				problems = append(problems, "refstore.database_url is required for postgres")
			}
		default:
			problems = append(problems, "refstore.backend must be tsv, sqlite, or postgres")
		}
	}

	switch mode {
	case "predict":
		checkRefstore()
	case "builddb":
		checkRefstore()
	case "serve":
		checkRefstore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Batch.MaxConcurrentInputs < 1 || c.Batch.MaxConcurrentInputs > 50 {
			problems = append(problems, "batch.max_concurrent_inputs must be between 1 and 50")
		}
	case "fetch":
		if c.Taxdump.URL == "" {
			problems = append(problems, "taxdump.url is required")
		}
		if c.Hosts.Path == "" {
			problems = append(problems, "hosts.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
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
