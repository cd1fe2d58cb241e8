// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for home-affordability.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Program  ProgramConfig  `yaml:"program,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// ProgramConfig describes the loan program: the ordered formula catalog and
// the per-unit limits. Either may be omitted to use the built-in values.
type ProgramConfig struct {
	Formulas []FormulaConfig `yaml:"formulas,omitempty"`
	Limits   []LimitsConfig  `yaml:"limits,omitempty"`
}

// FormulaConfig is one catalog entry. The order of entries is the order used
// when searching for an alternate formula.
type FormulaConfig struct {
	ID     string  `yaml:"id" mapstructure:"id"`
	MaxLTV float64 `yaml:"maxLtv,omitempty" mapstructure:"maxLtv"`
}

// LimitsConfig holds the limits for one unit count. Max is optional.
type LimitsConfig struct {
	Units       int     `yaml:"units" mapstructure:"units"`
	Conforming  float64 `yaml:"conforming" mapstructure:"conforming"`
	HighBalance float64 `yaml:"highBalance" mapstructure:"highBalance"`
	Max         float64 `yaml:"max,omitempty" mapstructure:"max"`
}

// DefaultsConfig holds the buyer inputs used when the CLI is not given them.
type DefaultsConfig struct {
	Buyer   loans.Buyer `yaml:",inline" mapstructure:",squash"`
	Formula string      `yaml:"formula,omitempty" mapstructure:"formula"`
	Units   int         `yaml:"units,omitempty" mapstructure:"units"`
}

// CacheConfig selects where evaluation responses are memoized.
type CacheConfig struct {
	Backend    string `yaml:"backend,omitempty" mapstructure:"backend"` // memory, redis, none
	Address    string `yaml:"address,omitempty" mapstructure:"address"`
	Password   string `yaml:"password,omitempty" mapstructure:"password"`
	DB         int    `yaml:"db,omitempty" mapstructure:"db"`
	TTLSeconds int    `yaml:"ttlSeconds,omitempty" mapstructure:"ttlSeconds"`
	KeyPrefix  string `yaml:"keyPrefix,omitempty" mapstructure:"keyPrefix"`
}

// ServerConfig holds the HTTP API settings used by the serve command.
type ServerConfig struct {
	Address       string `yaml:"address,omitempty" mapstructure:"address"`
	MaxUploadSize string `yaml:"maxUploadSize,omitempty" mapstructure:"maxUploadSize"` // e.g. 256K, 1MB
}

// UploadSizeBytes returns the request body limit in bytes.
func (s ServerConfig) UploadSizeBytes() (int64, error) {
	return ParseSize(s.MaxUploadSize)
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return constants.DefaultCacheTTLSeconds * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Each overlay is merged on top in order, so a server
// config file only needs the keys it changes. An empty configPath starts from
// the built-in defaults.
func LoadConfiguration(configPath string, overlays ...string) (*Configuration, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	for _, overlay := range overlays {
		if _, err := os.Stat(overlay); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("overlay config file %s does not exist", overlay)
		}
		v.SetConfigFile(overlay)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error merging config file %s, %s", overlay, err)
		}
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is present.
func Default() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in configuration: %v", err))
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("defaults.formula", "C.10.0")
	v.SetDefault("defaults.units", constants.MinUnits)
	v.SetDefault("defaults.loanTermYears", constants.MaxLoanTermYears)
	v.SetDefault("defaults.interestRate", 6.5)
	v.SetDefault("cache.backend", constants.CacheBackendMemory)
	v.SetDefault("cache.ttlSeconds", constants.DefaultCacheTTLSeconds)
	v.SetDefault("cache.keyPrefix", constants.DefaultCacheKeyPrefix)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxUploadSize", constants.DefaultMaxUploadSize)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// BuildCatalog turns the configured formulas into a catalog, keeping their
// order. An empty list yields the built-in catalog.
func (c *Configuration) BuildCatalog() (*eligibility.Catalog, error) {
	if len(c.Program.Formulas) == 0 {
		return eligibility.DefaultCatalog(), nil
	}

	formulas := make([]eligibility.Formula, 0, len(c.Program.Formulas))
	for _, fc := range c.Program.Formulas {
		f, err := eligibility.NewFormula(fc.ID, fc.MaxLTV)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return eligibility.NewCatalog(formulas...)
}

// BuildLimits turns the configured limits into a table. An empty list yields
// the built-in limits.
func (c *Configuration) BuildLimits() (*eligibility.LimitsTable, error) {
	if len(c.Program.Limits) == 0 {
		return eligibility.DefaultLimitsTable(), nil
	}

	byUnits := make(map[int]eligibility.Limits, len(c.Program.Limits))
	for _, lc := range c.Program.Limits {
		if _, dup := byUnits[lc.Units]; dup {
			return nil, fmt.Errorf("%w: duplicate limits for %d units", eligibility.ErrInvalidLimits, lc.Units)
		}
		byUnits[lc.Units] = eligibility.Limits{
			Conforming:  lc.Conforming,
			HighBalance: lc.HighBalance,
			Max:         lc.Max,
		}
	}
	return eligibility.NewLimitsTable(byUnits)
}

// NewResolver builds a resolver from the program section.
func (c *Configuration) NewResolver(logger *zap.Logger) (*eligibility.Resolver, error) {
	catalog, err := c.BuildCatalog()
	if err != nil {
		return nil, err
	}
	limits, err := c.BuildLimits()
	if err != nil {
		return nil, err
	}
	return eligibility.NewResolver(logger, catalog, limits), nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	catalog, err := c.BuildCatalog()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("formula catalog is invalid: %v", err))
	} else if c.Defaults.Formula != "" {
		if _, ok := catalog.Lookup(c.Defaults.Formula); !ok {
			warnings = append(warnings, fmt.Sprintf("default formula %s is not in the catalog", c.Defaults.Formula))
		}
	}
	if err == nil {
		warnings = append(warnings, tierCoverageWarnings(catalog)...)
	}

	limits, err := c.BuildLimits()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("limits table is invalid: %v", err))
	} else {
		if _, ok := limits.Lookup(c.Defaults.Units); !ok && c.Defaults.Units != 0 {
			warnings = append(warnings, fmt.Sprintf("no limits configured for default unit count %d", c.Defaults.Units))
		}
		for units := constants.MinUnits; units <= constants.MaxUnits; units++ {
			if _, ok := limits.Lookup(units); !ok {
				warnings = append(warnings, fmt.Sprintf("no limits configured for %d units; requests for it will fail", units))
			}
		}
	}

	buyer := c.Defaults.Buyer
	if buyer.AnnualInterestRatePct != 0 &&
		(buyer.AnnualInterestRatePct < constants.MinInterestRatePct || buyer.AnnualInterestRatePct > constants.MaxInterestRatePct) {
		warnings = append(warnings, fmt.Sprintf("default interest rate %.3f%% will be clamped to %.0f-%.0f%%",
			buyer.AnnualInterestRatePct, constants.MinInterestRatePct, constants.MaxInterestRatePct))
	}
	if buyer.LoanTermYears != 0 &&
		(buyer.LoanTermYears < constants.MinLoanTermYears || buyer.LoanTermYears > constants.MaxLoanTermYears) {
		warnings = append(warnings, fmt.Sprintf("default loan term %d years will be clamped to %d-%d",
			buyer.LoanTermYears, constants.MinLoanTermYears, constants.MaxLoanTermYears))
	}

	switch c.Cache.Backend {
	case "", constants.CacheBackendMemory, constants.CacheBackendNone:
	case constants.CacheBackendRedis:
		if c.Cache.Address == "" {
			warnings = append(warnings, "redis cache backend selected without an address")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown cache backend %q; caching disabled", c.Cache.Backend))
	}

	if c.Server.Address == "" {
		warnings = append(warnings, fmt.Sprintf("server address is empty; serve listens on %s", constants.DefaultServerAddress))
	}
	if _, err := c.Server.UploadSizeBytes(); err != nil {
		warnings = append(warnings, fmt.Sprintf("server maxUploadSize is invalid, serve will refuse to start: %v", err))
	}

	return warnings
}

// WriteYAML writes the effective configuration in the same layout the
// loader reads.
func (c *Configuration) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("unable to encode configuration, %s", err)
	}
	return enc.Close()
}

func tierCoverageWarnings(catalog *eligibility.Catalog) []string {
	var conforming, highBalance int
	for _, f := range catalog.Formulas() {
		switch f.Tier {
		case constants.TierConforming:
			conforming++
		case constants.TierHighBalance:
			highBalance++
		}
	}

	var warnings []string
	if conforming == 0 {
		warnings = append(warnings, "catalog has no conforming formulas")
	}
	if highBalance == 0 {
		warnings = append(warnings, "catalog has no high-balance formulas")
	}
	return warnings
}
