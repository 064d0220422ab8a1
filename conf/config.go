package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/foundrytechnologies/flow-sdk/constants"
)

var config *FlowConfig

// FlowConfig holds the marketplace client configuration loaded from
// flow.toml, with credential overrides from the environment (or a .env
// file). Pass the loaded value into the managers instead of reaching for
// GetConfig inside library code.
type FlowConfig struct {
	API     API
	AUTH    AUTH
	FOUNDRY FOUNDRY
	PRICES  PRICES
}

type API struct {
	BaseUrl    string
	Timeout    int
	MaxRetries int
}

type AUTH struct {
	Email    string
	Password string
	ApiKey   string
}

type FOUNDRY struct {
	ProjectName string
	SshKeyName  string
	CatalogPath string
}

// PRICES is the priority price table in major currency units per GPU.
type PRICES struct {
	Critical float64
	High     float64
	Standard float64
	Low      float64
}

func InitConfig(repoPath string) error {
	configFile := filepath.Join(repoPath, "flow.toml")

	var cfg FlowConfig
	if _, err := toml.DecodeFile(configFile, &cfg); err != nil {
		return fmt.Errorf("failed load config file, path: %s, error: %w", configFile, err)
	}
	cfg.applyDefaults()

	// Credentials may live in the environment rather than the config file.
	godotenv.Load(filepath.Join(repoPath, ".env"))
	cfg.applyEnvOverrides()

	if cfg.AUTH.ApiKey == "" && (cfg.AUTH.Email == "" || cfg.AUTH.Password == "") {
		return fmt.Errorf("missing credentials: set AUTH.ApiKey or AUTH.Email and AUTH.Password")
	}

	config = &cfg
	return nil
}

func GetConfig() *FlowConfig {
	return config
}

func (c *FlowConfig) applyDefaults() {
	if c.API.BaseUrl == "" {
		c.API.BaseUrl = constants.DefaultBaseUrl
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = constants.DefaultTimeout
	}
	if c.API.MaxRetries <= 0 {
		c.API.MaxRetries = constants.DefaultMaxRetries
	}
	if c.PRICES.Critical <= 0 {
		c.PRICES.Critical = 14.99
	}
	if c.PRICES.High <= 0 {
		c.PRICES.High = 12.29
	}
	if c.PRICES.Standard <= 0 {
		c.PRICES.Standard = 4.24
	}
	if c.PRICES.Low <= 0 {
		c.PRICES.Low = 2.00
	}
}

func (c *FlowConfig) applyEnvOverrides() {
	if v := os.Getenv("FOUNDRY_EMAIL"); v != "" {
		c.AUTH.Email = v
	}
	if v := os.Getenv("FOUNDRY_PASSWORD"); v != "" {
		c.AUTH.Password = v
	}
	if v := os.Getenv("FOUNDRY_API_KEY"); v != "" {
		c.AUTH.ApiKey = v
	}
	if v := os.Getenv("FOUNDRY_PROJECT_NAME"); v != "" {
		c.FOUNDRY.ProjectName = v
	}
	if v := os.Getenv("FOUNDRY_SSH_KEY_NAME"); v != "" {
		c.FOUNDRY.SshKeyName = v
	}
}

// PriorityPriceCents resolves a priority tier to a limit price in cents.
// An unrecognized priority is a configuration error.
func (c *FlowConfig) PriorityPriceCents(priority string) (int, error) {
	var price float64
	switch strings.ToLower(priority) {
	case constants.PriorityCritical:
		price = c.PRICES.Critical
	case constants.PriorityHigh:
		price = c.PRICES.High
	case constants.PriorityStandard:
		price = c.PRICES.Standard
	case constants.PriorityLow:
		price = c.PRICES.Low
	default:
		return 0, fmt.Errorf("invalid or unsupported priority level: %s", priority)
	}
	return int(price * 100), nil
}
