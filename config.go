package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Schema         string   `toml:"$schema,omitempty"`
	Engine         string   `toml:"engine"`
	ResultCount    int      `toml:"result_count"`
	ContentTypes   []string `toml:"content_types,omitempty"`
	SearchDepth    string   `toml:"search_depth"`
	IncludeDomains []string `toml:"include_domains,omitempty"`
	ExcludeDomains []string `toml:"exclude_domains,omitempty"`
	Timeout        float64  `toml:"timeout"`
	Expand         bool     `toml:"expand"`
	NoColor        bool     `toml:"no_color"`
	URLHandler     string   `toml:"url_handler,omitempty"`
	Debug          bool     `toml:"debug"`
	HistoryEnabled bool     `toml:"history_enabled"`
	MaxHistory     int      `toml:"max_history"`

	EnginesSerper  SerperConfig  `toml:"engines_serper"`
	EnginesBrave   BraveConfig   `toml:"engines_brave"`
	EnginesTavily  TavilyConfig  `toml:"engines_tavily"`
	EnginesSearxng SearxngConfig `toml:"engines_searxng"`
}

// SerperConfig holds Serper API configuration
type SerperConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// BraveConfig holds Brave Search API configuration
type BraveConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// TavilyConfig holds Tavily Search API configuration
type TavilyConfig struct {
	APIKey            string `toml:"api_key,omitempty"`
	BaseURL           string `toml:"base_url,omitempty"`
	SearchDepth       string `toml:"search_depth,omitempty"`
	IncludeRawContent bool   `toml:"include_raw_content,omitempty"`
}

// SearxngConfig holds SearXNG instance configuration
type SearxngConfig struct {
	URL         string `toml:"url,omitempty"`
	Username    string `toml:"username,omitempty"`
	Password    string `toml:"password,omitempty"`
	HTTPMethod  string `toml:"http_method,omitempty"`
	NoVerifySSL bool   `toml:"no_verify_ssl,omitempty"`
}

const (
	defaultEngine         = "serper"
	defaultResultCount    = 10
	defaultSearchDepth    = "basic"
	defaultTimeout        = 30.0
	defaultHTTPMethod     = "GET"
	defaultHistoryEnabled = true
	defaultMaxHistory     = 100
)

// envOverrides maps environment variables to the credential they replace
var envOverrides = map[string]func(*Config, string){
	"SERPER_API_KEY": func(c *Config, v string) { c.EnginesSerper.APIKey = v },
	"BRAVE_API_KEY":  func(c *Config, v string) { c.EnginesBrave.APIKey = v },
	"TAVILY_API_KEY": func(c *Config, v string) { c.EnginesTavily.APIKey = v },
	"SEARXNG_URL":    func(c *Config, v string) { c.EnginesSearxng.URL = v },
	"FANSEEK_ENGINE": func(c *Config, v string) { c.Engine = v },
}

func getConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "fanseek")
}

func getDefaultConfig() *Config {
	return &Config{
		Engine:         defaultEngine,
		ResultCount:    defaultResultCount,
		SearchDepth:    defaultSearchDepth,
		Timeout:        defaultTimeout,
		HistoryEnabled: defaultHistoryEnabled,
		MaxHistory:     defaultMaxHistory,
		EnginesTavily: TavilyConfig{
			SearchDepth: defaultSearchDepth,
		},
		EnginesSearxng: SearxngConfig{
			HTTPMethod: defaultHTTPMethod,
		},
	}
}

func loadConfig() (*Config, error) {
	return loadConfigFile(filepath.Join(getConfigDir(), "config.toml"), os.Getenv)
}

// loadConfigFile layers defaults, the TOML file (if present) and environment
// overrides, in that order.
func loadConfigFile(configFile string, getenv func(string) string) (*Config, error) {
	config := getDefaultConfig()

	if _, err := os.Stat(configFile); err == nil {
		if _, err := toml.DecodeFile(configFile, config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	for name, apply := range envOverrides {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			apply(config, v)
		}
	}

	return config, nil
}

func ensureConfig() error {
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.toml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return createConfigFile(configDir, configFile)
	}

	return nil
}

// createConfigFile writes the defaults without credentials; keys are expected
// from the environment or a later edit.
func createConfigFile(configDir, configFile string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(configFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(`# fanseek configuration file
# Credentials may also be supplied through SERPER_API_KEY, BRAVE_API_KEY,
# TAVILY_API_KEY and SEARXNG_URL.

`)
	if err != nil {
		return err
	}

	if err := toml.NewEncoder(file).Encode(getDefaultConfig()); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Created config file: %s\n", configFile)
	return nil
}
