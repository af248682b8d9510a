package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/paperdesk/contract"
	"github.com/rustyeddy/paperdesk/fees"
)

// Config is the complete dashboard-backend configuration.
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Commission CommissionConfig `json:"commission" yaml:"commission"`
	Contracts  []contract.Spec  `json:"contracts,omitempty" yaml:"contracts,omitempty"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Mirror     MirrorConfig     `json:"mirror" yaml:"mirror"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// CommissionConfig tunes the per-unit per-side commission model.
type CommissionConfig struct {
	Rate  float64 `json:"rate" yaml:"rate"`
	Floor float64 `json:"floor" yaml:"floor"`
}

// StorageConfig locates the snapshot database. Empty means in-memory only.
type StorageConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MirrorConfig points at the remote store receiving one-way mutation
// events. Empty URL disables mirroring.
type MirrorConfig struct {
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	QueueSize int    `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
}

// SimulationConfig drives the scripted `run` mode.
type SimulationConfig struct {
	PriceSteps []PriceStep `json:"price_steps,omitempty" yaml:"price_steps,omitempty"`
}

// PriceStep is one scripted mark-price update.
type PriceStep struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Price  float64 `json:"price" yaml:"price"`
	Delay  string  `json:"delay,omitempty" yaml:"delay,omitempty"` // e.g. "1s", "500ms"
}

// ParseDuration converts the delay string to time.Duration.
func (ps PriceStep) ParseDuration() (time.Duration, error) {
	if ps.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(ps.Delay)
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content), applies env overrides and validates.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file settings from the environment (a .env file is
// loaded by main before this runs).
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PAPERDESK_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("PAPERDESK_MIRROR_URL"); v != "" {
		c.Mirror.URL = v
	}
	if v := os.Getenv("PAPERDESK_JOURNAL_DB"); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Commission.Rate < 0 {
		return fmt.Errorf("commission.rate must not be negative")
	}
	if c.Commission.Floor < 0 {
		return fmt.Errorf("commission.floor must not be negative")
	}
	for _, spec := range c.Contracts {
		if spec.Symbol == "" {
			return fmt.Errorf("contract with empty symbol")
		}
		if spec.PointValue <= 0 {
			return fmt.Errorf("contract %s: point_value must be positive", spec.Symbol)
		}
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	for _, ps := range c.Simulation.PriceSteps {
		if ps.Symbol == "" {
			return fmt.Errorf("simulation price step with empty symbol")
		}
		if ps.Price <= 0 {
			return fmt.Errorf("simulation price step for %s: price must be positive", ps.Symbol)
		}
		if _, err := ps.ParseDuration(); err != nil {
			return fmt.Errorf("simulation price step for %s: %w", ps.Symbol, err)
		}
	}
	return nil
}

// Registry builds the contract registry: the builtin set plus any
// configured overrides.
func (c *Config) Registry() *contract.Registry {
	reg := contract.Builtin()
	for _, spec := range c.Contracts {
		reg.Add(spec)
	}
	return reg
}

// FeeModel builds the commission model from config, falling back to the
// package defaults for unset values.
func (c *Config) FeeModel(reg *contract.Registry) fees.Model {
	m := fees.NewModel(reg)
	if c.Commission.Rate > 0 {
		m.Rate = c.Commission.Rate
	}
	if c.Commission.Floor > 0 {
		m.Floor = c.Commission.Floor
	}
	return m
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "PAPER-001",
			Currency: "USD",
			Balance:  25_000,
		},
		Commission: CommissionConfig{
			Rate:  fees.DefaultRate,
			Floor: fees.DefaultFloor,
		},
		Storage: StorageConfig{
			DBPath: "./paperdesk.sqlite",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./paperdesk.sqlite",
		},
		Mirror: MirrorConfig{},
	}
}
