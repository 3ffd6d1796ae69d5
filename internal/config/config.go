package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	serr "filecat/internal/errors"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Export formats understood by the exporter.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ScanConfig controls the directory walk.
type ScanConfig struct {
	Exclude  []string `yaml:"exclude"`   // Glob patterns matched against names and relative paths
	MaxDepth int      `yaml:"max_depth"` // 0 = unlimited
}

// ExportConfig controls where and how the inventory is written.
type ExportConfig struct {
	Format string `yaml:"format"` // xlsx, csv or json
	Path   string `yaml:"path"`   // Empty = next to the scanned directory
	Sheet  string `yaml:"sheet"`  // Worksheet name for xlsx
}

// SummarizeConfig controls the call to the generative-text service.
type SummarizeConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	APIKeyEnv     string        `yaml:"api_key_env"`    // Environment variable holding the key
	Timeout       time.Duration `yaml:"timeout"`        // Upper bound for one request
	MaxRows       int           `yaml:"max_rows"`       // 0 = send every record
	NarrativeFile string        `yaml:"narrative_file"` // Written next to the scanned directory
	HTML          bool          `yaml:"html"`           // Also render the narrative as HTML
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before a rescan
}

// LogConfig controls logging output.
type LogConfig struct {
	Debug bool   `yaml:"debug"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

// ThemeConfig holds terminal colours for the progress view.
type ThemeConfig struct {
	Name     string `yaml:"name"`     // Theme name (default, dark, light, etc.)
	Primary  string `yaml:"primary"`  // Primary color for branding
	Success  string `yaml:"success"`  // Success message color
	Warning  string `yaml:"warning"`  // Warning message color
	Error    string `yaml:"error"`    // Error message color
	Info     string `yaml:"info"`     // Informational message color
	Emphasis string `yaml:"emphasis"` // Emphasis color for text that should stand out
	Border   string `yaml:"border"`   // Border color for frames
}

// Config represents the application configuration structure.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Export    ExportConfig    `yaml:"export"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Watch     WatchConfig     `yaml:"watch"`
	Log       LogConfig       `yaml:"log"`
	Theme     ThemeConfig     `yaml:"theme"`
}

// DefaultPath returns ~/.config/filecat/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "filecat", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/filecat/config.yaml).
func LoadConfig() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, serr.NewFileError("error reading config file", path, serr.FileAccessDenied, err)
	}

	// Decoding over the defaults keeps every field the file leaves out
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, serr.NewConfigError("error parsing config file", path, serr.InvalidConfig, err)
	}
	// The defaults already carry a palette, so read the theme section on
	// its own to see which colours the file actually sets
	var file struct {
		Theme ThemeConfig `yaml:"theme"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, serr.NewConfigError("error parsing config file", path, serr.InvalidConfig, err)
	}
	if file.Theme.Name != "" {
		cfg.ApplyTheme(file.Theme.Name)
		cfg.Theme.overlay(file.Theme)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Scan.Exclude = []string{}
	cfg.Scan.MaxDepth = 0

	cfg.Export.Format = FormatXLSX
	cfg.Export.Sheet = "File Scan Results"

	cfg.Summarize.Enabled = true
	cfg.Summarize.Model = "gemini-1.5-flash"
	cfg.Summarize.BaseURL = "https://generativelanguage.googleapis.com"
	cfg.Summarize.APIKeyEnv = "GEMINI_API_KEY"
	cfg.Summarize.Timeout = 60 * time.Second
	cfg.Summarize.MaxRows = 0
	cfg.Summarize.NarrativeFile = "organised.txt"

	cfg.Watch.Debounce = 2 * time.Second

	cfg.ApplyTheme("default")
	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return serr.NewFileError("failed to create config directory", dir, serr.FileCreateFailed, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return serr.NewFileError("failed to write config file", path, serr.FileOperationFailed, err)
	}
	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return serr.NewConfigError("nil config", "", serr.InvalidConfig, nil)
	}

	switch c.Export.Format {
	case FormatXLSX, FormatCSV, FormatJSON:
	default:
		return serr.NewConfigError("invalid export format", "export.format",
			serr.InvalidConfig, fmt.Errorf("%q is not one of xlsx, csv, json", c.Export.Format))
	}
	if c.Export.Format == FormatXLSX && c.Export.Sheet == "" {
		return serr.NewConfigError("sheet name is required for xlsx export", "export.sheet", serr.InvalidConfig, nil)
	}

	if c.Scan.MaxDepth < 0 {
		return serr.NewConfigError("max depth must be >= 0", "scan.max_depth", serr.InvalidConfig, nil)
	}
	for i, pattern := range c.Scan.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return serr.NewConfigError(fmt.Sprintf("exclude pattern %d is invalid", i), "scan.exclude", serr.InvalidConfig, err)
		}
	}

	if c.Summarize.Enabled {
		if c.Summarize.Model == "" {
			return serr.NewConfigError("model is required when summarize is enabled", "summarize.model", serr.InvalidConfig, nil)
		}
		if c.Summarize.BaseURL == "" {
			return serr.NewConfigError("base url is required when summarize is enabled", "summarize.base_url", serr.InvalidConfig, nil)
		}
		if c.Summarize.Timeout <= 0 {
			return serr.NewConfigError("timeout must be > 0", "summarize.timeout", serr.InvalidConfig, nil)
		}
	}
	if c.Summarize.MaxRows < 0 {
		return serr.NewConfigError("max rows must be >= 0", "summarize.max_rows", serr.InvalidConfig, nil)
	}

	if c.Watch.Debounce < 100*time.Millisecond {
		return serr.NewConfigError("watch debounce must be >= 100ms", "watch.debounce", serr.InvalidConfig, nil)
	}

	return nil
}

// APIKey returns the summarizer key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.Summarize.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Summarize.APIKeyEnv)
}

// NewTestConfig creates a configuration instance for testing purposes.
// Summaries are disabled so tests never reach the network.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Summarize.Enabled = false
	cfg.Summarize.Timeout = 5 * time.Second
	cfg.Watch.Debounce = 200 * time.Millisecond
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":  "213", // Purple
			"success":  "114", // Green
			"warning":  "220", // Yellow
			"error":    "196", // Red
			"info":     "39",  // Blue
			"emphasis": "212", // Light Pink
			"border":   "213", // Purple
		},
		"dark": {
			"primary":  "105",
			"success":  "78",
			"warning":  "214",
			"error":    "160",
			"info":     "33",
			"emphasis": "147",
			"border":   "105",
		},
		"light": {
			"primary":  "135",
			"success":  "150",
			"warning":  "222",
			"error":    "210",
			"info":     "117",
			"emphasis": "219",
			"border":   "135",
		},
		"monochrome": {
			"primary":  "245",
			"success":  "252",
			"warning":  "241",
			"error":    "232",
			"info":     "248",
			"emphasis": "255",
			"border":   "245",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme in the configuration.
// It updates the theme colors based on the theme name.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// overlay copies every colour set in o over t
func (t *ThemeConfig) overlay(o ThemeConfig) {
	for dst, src := range map[*string]string{
		&t.Primary:  o.Primary,
		&t.Success:  o.Success,
		&t.Warning:  o.Warning,
		&t.Error:    o.Error,
		&t.Info:     o.Info,
		&t.Emphasis: o.Emphasis,
		&t.Border:   o.Border,
	} {
		if src != "" {
			*dst = src
		}
	}
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
