package sqlshard

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/sqlshard/query"
	"github.com/shibukawa/sqlshard/sharding"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// Config represents the sqlshard configuration
type Config struct {
	Dialect     string                `yaml:"dialect"`
	DataSources map[string]DataSource `yaml:"data_sources"`
	Sharding    ShardingConfig        `yaml:"sharding"`
	Query       QueryConfig           `yaml:"query"`
}

// DataSource represents one physical database
type DataSource struct {
	Driver     string `yaml:"driver"`
	Connection string `yaml:"connection"`
}

// ShardingConfig declares sharded logic tables and how they are bound
type ShardingConfig struct {
	DefaultDataSource string               `yaml:"default_data_source"`
	Tables            map[string]TableRule `yaml:"tables"`
	BindingTables     [][]string           `yaml:"binding_tables"`
}

// TableRule declares where one logic table lives
type TableRule struct {
	// ActualDataNodes is an inline expression such as "ds_${0..1}.t_order_${0..1}".
	// Empty means the logic table itself on every data source.
	ActualDataNodes string `yaml:"actual_data_nodes"`
}

// QueryConfig represents query execution settings
type QueryConfig struct {
	DefaultFormat         string `yaml:"default_format"`
	Timeout               int    `yaml:"timeout"`
	ExecuteDangerousQuery bool   `yaml:"execute_dangerous_query"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Return default configuration if file doesn't exist
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if _, err := tok.ParseDialect(config.Dialect); err != nil {
		return fmt.Errorf("%w: invalid dialect '%s': must be one of mysql, postgres, sqlserver, sqlite", ErrConfigValidation, config.Dialect)
	}

	for name, source := range config.DataSources {
		if source.Driver == "" {
			return fmt.Errorf("%w: data_sources.%s.driver is required", ErrConfigValidation, name)
		}
	}

	if _, err := config.ShardingRule(); err != nil {
		return fmt.Errorf("%w: sharding: %w", ErrConfigValidation, err)
	}

	if config.Query.Timeout < 0 {
		return fmt.Errorf("%w: query.timeout must be non-negative, got %d", ErrConfigValidation, config.Query.Timeout)
	}

	if config.Query.DefaultFormat != "" && !query.IsValidOutputFormat(config.Query.DefaultFormat) {
		return fmt.Errorf("%w: query.default_format '%s' is invalid: must be one of table, json, csv, yaml", ErrConfigValidation, config.Query.DefaultFormat)
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	if config.Dialect == "" {
		config.Dialect = "mysql"
	}

	if config.DataSources == nil {
		config.DataSources = make(map[string]DataSource)
	}

	if config.Sharding.Tables == nil {
		config.Sharding.Tables = make(map[string]TableRule)
	}

	if config.Query.DefaultFormat == "" {
		config.Query.DefaultFormat = string(query.FormatTable)
	}

	if config.Query.Timeout == 0 {
		config.Query.Timeout = 30
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in data source settings.
// Data node expressions share the ${...} syntax and are left untouched.
func expandConfigEnvVars(config *Config) {
	for name, source := range config.DataSources {
		source.Connection = expandEnvVars(source.Connection)
		source.Driver = expandEnvVars(source.Driver)
		config.DataSources[name] = source
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// TokenizerDialect returns the configured SQL dialect
func (c *Config) TokenizerDialect() (tok.Dialect, error) {
	return tok.ParseDialect(c.Dialect)
}

// DataSourceNames returns the data source names in sorted order
func (c *Config) DataSourceNames() []string {
	return slices.Sorted(maps.Keys(c.DataSources))
}

// ShardingRule builds the sharding rule index. Tables are registered in name order.
func (c *Config) ShardingRule() (*sharding.Rule, error) {
	cfg := sharding.Config{
		DataSources:       c.DataSourceNames(),
		DefaultDataSource: c.Sharding.DefaultDataSource,
		BindingTables:     c.Sharding.BindingTables,
	}

	for _, name := range slices.Sorted(maps.Keys(c.Sharding.Tables)) {
		cfg.Tables = append(cfg.Tables, sharding.TableRuleConfig{
			LogicTable:      name,
			ActualDataNodes: c.Sharding.Tables[name].ActualDataNodes,
		})
	}

	return sharding.NewRule(cfg)
}

// QueryDataSources converts the data sources for the query executor
func (c *Config) QueryDataSources() map[string]query.DataSource {
	result := make(map[string]query.DataSource, len(c.DataSources))
	for name, source := range c.DataSources {
		result[name] = query.DataSource{Driver: source.Driver, Connection: source.Connection}
	}

	return result
}
