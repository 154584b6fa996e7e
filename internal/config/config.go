package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvConfigPath names the variable that points at a config file
const EnvConfigPath = "WIKIVAULT_CONFIG"

// Config represents the wikivault configuration
type Config struct {
	OutputDir string `yaml:"output_dir" env:"WIKIVAULT_OUTPUT_DIR" env-default:"obsidian_vault"`
	MediaDir  string `yaml:"media_dir"  env:"WIKIVAULT_MEDIA_DIR"  env-default:"images"`
	IndexDir  string `yaml:"index_dir"  env:"WIKIVAULT_INDEX_DIR"  env-default:"_indexes"`
	LogFile   string `yaml:"log_file"   env:"WIKIVAULT_LOG_FILE"`

	Renderer      string        `yaml:"renderer"       env:"WIKIVAULT_RENDERER"       env-default:"pandoc"`
	PandocPath    string        `yaml:"pandoc_path"    env:"WIKIVAULT_PANDOC_PATH"    env-default:"pandoc"`
	RenderTimeout time.Duration `yaml:"render_timeout" env:"WIKIVAULT_RENDER_TIMEOUT"`

	Scheme      string        `yaml:"scheme"       env:"WIKIVAULT_SCHEME"       env-default:"https"`
	APIPath     string        `yaml:"api_path"     env:"WIKIVAULT_API_PATH"     env-default:"/w/api.php"`
	UserAgent   string        `yaml:"user_agent"   env:"WIKIVAULT_USER_AGENT"   env-default:"wikivault/0.1 (https://github.com/gerunddev/wikivault)"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"WIKIVAULT_HTTP_TIMEOUT" env-default:"60s"`

	SkipRedirects bool `yaml:"skip_redirects" env:"WIKIVAULT_SKIP_REDIRECTS"`
	Verbose       bool `yaml:"verbose"        env:"WIKIVAULT_VERBOSE"`
	// KeepLineBreaks disables joining of hard-wrapped paragraph lines
	KeepLineBreaks bool `yaml:"keep_line_breaks" env:"WIKIVAULT_KEEP_LINE_BREAKS"`
}

// ConfigPath returns the path to the default config file
// Can be overridden for testing
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "wikivault", "config.yaml")
}

// Load reads configuration. Priority: ENV > YAML file > defaults.
// The file is path when given, else $WIKIVAULT_CONFIG, else the XDG
// default. A missing default file is not an error; a missing explicit
// one is. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = ConfigPath()
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.MediaDir, validation.Required, validation.By(relativePath)),
		validation.Field(&c.IndexDir, validation.Required, validation.By(relativePath)),
		validation.Field(&c.Renderer, validation.Required, validation.In("pandoc", "api", "none")),
		validation.Field(&c.PandocPath, validation.When(c.Renderer == "pandoc", validation.Required)),
		validation.Field(&c.RenderTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Scheme, validation.Required, validation.In("http", "https")),
		validation.Field(&c.APIPath, validation.Required),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
	)
}

// Unwrap reports whether hard-wrapped paragraphs should be joined
func (c *Config) Unwrap() bool {
	return !c.KeepLineBreaks
}

func relativePath(value interface{}) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) {
		return errors.New("must be relative to the output directory")
	}
	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
