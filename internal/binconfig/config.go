// Package binconfig loads the parser's tunable resource caps and ambient
// logging settings (§9 "design-time constants... may be tuned"), via a
// multi-source loader narrowed to the handful of knobs the parsing
// core actually reads.
package binconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/spf13/viper"

	"github.com/gogo2464/LIEF/internal/binlog"
)

// Config holds every value the parser threads down into pefmt's
// sub-parsers instead of hardcoding.
type Config struct {
	// MaxDataSize bounds the in-memory copy of a TLS data template.
	// §5 "hard caps enforced by the parser".
	MaxDataSize int64 `yaml:"max_data_size" mapstructure:"max_data_size" toml:"max_data_size" default:"104857600"`
	// MaxTLSCallbacks bounds the TLS callback list length (§4.7).
	MaxTLSCallbacks int `yaml:"max_tls_callbacks" mapstructure:"max_tls_callbacks" toml:"max_tls_callbacks" default:"4096"`

	LogLevel  string `yaml:"log_level" mapstructure:"log_level" toml:"log_level" default:"info"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format" toml:"log_format" default:"text"`
}

// Default returns a Config populated purely from the `default:` struct
// tags (via creasty/defaults), with no file or environment source.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("binconfig: set defaults: %w", err)
	}
	return cfg, nil
}

// Manager loads Config from a file (YAML or TOML, detected by
// extension) layered over defaults. For a non-TOML file, environment
// variables take precedence over the file, which takes precedence over
// defaults. There is no command-line flag source.
type Manager struct {
	v      *viper.Viper
	logger *binlog.Logger
}

// NewManager builds a Manager. A nil logger falls back to a discarding
// one so callers that don't care about load diagnostics aren't forced
// to wire one up.
func NewManager(logger *binlog.Logger) *Manager {
	if logger == nil {
		logger = binlog.Discard()
	}
	return &Manager{v: viper.New(), logger: logger}
}

// Load reads configFile if non-empty (dispatching to the TOML loader
// for a ".toml" extension, viper otherwise) and falls back to baked-in
// defaults when absent. On the viper path it also applies
// `BINFMT_`-prefixed environment overrides; a ".toml" file is decoded
// straight over the defaults and environment overrides are not applied.
func (m *Manager) Load(configFile string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if configFile != "" && strings.HasSuffix(configFile, ".toml") {
		if _, err := toml.DecodeFile(configFile, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("binconfig: decode toml config: %w", err)
			}
			m.logger.WithComponent("config").Warnf("toml config not found: %s", configFile)
		}
		return cfg, nil
	}

	m.v.SetDefault("max_data_size", cfg.MaxDataSize)
	m.v.SetDefault("max_tls_callbacks", cfg.MaxTLSCallbacks)
	m.v.SetDefault("log_level", cfg.LogLevel)
	m.v.SetDefault("log_format", cfg.LogFormat)

	m.v.SetEnvPrefix("BINFMT")
	m.v.AutomaticEnv()
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		m.v.SetConfigFile(configFile)
		if err := m.v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("binconfig: read config file: %w", err)
			}
			m.logger.WithComponent("config").Warnf("config file not found: %s", configFile)
		}
	}

	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("binconfig: unmarshal config: %w", err)
	}

	return cfg, nil
}
