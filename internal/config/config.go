package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads from YAML strings such as "10s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string. A bare integer is read as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SearchConfig holds the traversal defaults used by the search tools.
type SearchConfig struct {
	// DefaultRoot is searched when a tool call names no path (empty = user home)
	DefaultRoot string `yaml:"default_root"`

	// QuickDirs are directory names under the user home searched by quick_search
	QuickDirs []string `yaml:"quick_dirs"`

	// Excluded directory names are pruned from every drive search
	Excluded []string `yaml:"excluded"`

	MaxResults int      `yaml:"max_results"`
	MaxDepth   int      `yaml:"max_depth"`
	Timeout    Duration `yaml:"timeout"`

	// HashAlgorithm is sha256 or blake3
	HashAlgorithm string `yaml:"hash_algorithm"`

	// MaxHashSizeMB skips larger files in duplicate detection
	MaxHashSizeMB int64 `yaml:"max_hash_size_mb"`
}

// LLMConfig configures the OpenAI-compatible chat completions provider.
type LLMConfig struct {
	// Provider is "openai" or "azure"
	Provider string `yaml:"provider"`

	// BaseURL is the OpenAI-compatible API root (provider openai)
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	// APIKey is normally taken from the environment
	APIKey string `yaml:"api_key"`

	AzureEndpoint   string `yaml:"azure_endpoint"`
	AzureDeployment string `yaml:"azure_deployment"`
	AzureAPIVersion string `yaml:"azure_api_version"`

	Temperature    float64  `yaml:"temperature"`
	MaxRetries     int      `yaml:"max_retries"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// AgentConfig configures the conversational loop.
type AgentConfig struct {
	// MaxIterations bounds model calls per user turn
	MaxIterations int `yaml:"max_iterations"`

	// HistoryWindow is the number of prior messages sent with each turn (0 = all)
	HistoryWindow int `yaml:"history_window"`

	// SystemPrompt replaces the built-in prompt when set
	SystemPrompt string `yaml:"system_prompt"`
}

// HistoryConfig selects where chat sessions are persisted.
type HistoryConfig struct {
	// Backend is "sqlite" or "memory"
	Backend string `yaml:"backend"`

	// DBPath is the SQLite database (empty = $FILEAGENT_HOME/history.db)
	DBPath string `yaml:"db_path"`
}

// ServerConfig configures how chat reaches the tool host.
type ServerConfig struct {
	// Command spawns the MCP tool host (empty = this binary's "serve")
	Command []string `yaml:"command"`
}

// Config represents fileagent configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory run logs are written to (empty = $FILEAGENT_HOME/logs)
	LogDir string `yaml:"log_dir"`

	// WorkDir is where relative tool paths resolve (empty = process working directory)
	WorkDir string `yaml:"work_dir"`

	Search  SearchConfig  `yaml:"search"`
	LLM     LLMConfig     `yaml:"llm"`
	Agent   AgentConfig   `yaml:"agent"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Search: SearchConfig{
			QuickDirs:     []string{"Documents", "Desktop", "Downloads", "Pictures", "Videos", "Music"},
			Excluded:      nil,
			MaxResults:    50,
			MaxDepth:      3,
			Timeout:       Duration(10 * time.Second),
			HashAlgorithm: "sha256",
			MaxHashSizeMB: 100,
		},
		LLM: LLMConfig{
			Provider:        "openai",
			BaseURL:         "https://api.openai.com/v1",
			Model:           "gpt-4o-mini",
			AzureAPIVersion: "2024-10-21",
			Temperature:     0,
			MaxRetries:      3,
			RequestTimeout:  Duration(2 * time.Minute),
		},
		Agent: AgentConfig{
			MaxIterations: 10,
			HistoryWindow: 40,
		},
		History: HistoryConfig{
			Backend: "sqlite",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// Keys present in the file override the defaults; absent keys keep them.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays credentials and endpoints from the environment. Setting
// AZURE_OPENAI_ENDPOINT switches the provider to azure.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("FILEAGENT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		c.LLM.Provider = "azure"
		c.LLM.AzureEndpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" && c.LLM.Provider == "azure" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_LLM_DEPLOYMENT"); v != "" {
		c.LLM.AzureDeployment = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		c.LLM.AzureAPIVersion = v
	}
	if v := os.Getenv("FILEAGENT_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(logLevel *string, workDir *string, model *string, historyBackend *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if workDir != nil {
		c.WorkDir = *workDir
	}
	if model != nil {
		c.LLM.Model = *model
	}
	if historyBackend != nil {
		c.History.Backend = *historyBackend
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be >= 0, got %d", c.Search.MaxResults)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must be >= 0, got %v", c.Search.Timeout.Std())
	}
	if c.Search.MaxHashSizeMB < 0 {
		return fmt.Errorf("search.max_hash_size_mb must be >= 0, got %d", c.Search.MaxHashSizeMB)
	}
	switch strings.ToLower(c.Search.HashAlgorithm) {
	case "", "sha256", "blake3":
	default:
		return fmt.Errorf("invalid search.hash_algorithm %q, must be one of: sha256, blake3", c.Search.HashAlgorithm)
	}

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("llm.base_url cannot be empty for provider openai")
		}
	case "azure":
		if c.LLM.AzureEndpoint == "" || c.LLM.AzureDeployment == "" {
			return fmt.Errorf("llm.azure_endpoint and llm.azure_deployment are required for provider azure")
		}
	default:
		return fmt.Errorf("invalid llm.provider %q, must be one of: openai, azure", c.LLM.Provider)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be >= 0, got %d", c.LLM.MaxRetries)
	}

	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be > 0, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.HistoryWindow < 0 {
		return fmt.Errorf("agent.history_window must be >= 0, got %d", c.Agent.HistoryWindow)
	}

	switch c.History.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("invalid history.backend %q, must be one of: sqlite, memory", c.History.Backend)
	}

	return nil
}
