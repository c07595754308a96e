// Package config loads the widget host configuration.
//
// Sources in priority order (highest first): command-line flags bound through
// Viper, HAINZELMAN_* environment variables, the working directory .env file,
// the .env file in the user config directory, an optional YAML config file and
// finally the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"hainzelman/internal/storage"
)

// EnvPrefix is the prefix of every environment variable read by the loader.
const EnvPrefix = "HAINZELMAN"

// AppName names the directory below the user config dir.
const AppName = "hainzelman"

// Keys understood by the loader. Flags should be bound under the same names.
const (
	KeyBaseURL        = "base-url"
	KeyAuth           = "auth"
	KeyGreeting       = "greeting"
	KeySupportEmail   = "support-email"
	KeyConsole        = "console"
	KeyLogLevel       = "log-level"
	KeyLogFile        = "log-file"
	KeyStorageDriver  = "storage-driver"
	KeyStoragePath    = "storage-path"
	KeyRedisAddr      = "redis-addr"
	KeyNamespace      = "namespace"
	KeyMarkdown       = "markdown"
	KeyMarkdownStyle  = "markdown-style"
	KeyWordWrap       = "word-wrap"
	KeyRequestTimeout = "request-timeout"
	KeyResume         = "resume"
	KeyListen         = "listen"
)

// DefaultGreeting is shown when no greeting is configured.
const DefaultGreeting = "Hi there! How can I help you today?"

// Config is the resolved host configuration.
type Config struct {
	BaseURL       string
	Authorization string
	Greeting      string
	SupportEmail  string
	// Console enables diagnostic logging.
	Console  bool
	LogLevel string
	LogFile  string

	Storage storage.Config

	Markdown       bool
	MarkdownStyle  string
	WordWrap       int
	RequestTimeout time.Duration
	Resume         bool

	// Listen is the address of the stub backend.
	Listen string
}

// Loader resolves a Config. The zero value is not usable; call NewLoader.
type Loader struct {
	v *viper.Viper

	// ConfigDir holds the config .env file and the default session file.
	ConfigDir string
	// WorkDir holds the local .env file.
	WorkDir string
	// ConfigFile is an optional YAML file. Empty means none.
	ConfigFile string
}

// NewLoader creates a loader with the default directories.
func NewLoader() *Loader {
	l := &Loader{v: viper.New()}
	if dir, err := os.UserConfigDir(); err == nil {
		l.ConfigDir = filepath.Join(dir, AppName)
	}
	if wd, err := os.Getwd(); err == nil {
		l.WorkDir = wd
	}
	return l
}

// Viper exposes the underlying instance so callers can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads every source and returns the merged configuration.
func (l *Loader) Load() (*Config, error) {
	v := l.v
	l.setDefaults()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if l.ConfigFile != "" {
		v.SetConfigFile(l.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.ConfigFile, err)
		}
	}

	for _, dir := range []string{l.ConfigDir, l.WorkDir} {
		if dir == "" {
			continue
		}
		if err := l.mergeDotEnv(filepath.Join(dir, ".env")); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		BaseURL:       strings.TrimSpace(v.GetString(KeyBaseURL)),
		Authorization: v.GetString(KeyAuth),
		Greeting:      v.GetString(KeyGreeting),
		SupportEmail:  v.GetString(KeySupportEmail),
		Console:       v.GetBool(KeyConsole),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFile:       v.GetString(KeyLogFile),
		Storage: storage.Config{
			Driver:    v.GetString(KeyStorageDriver),
			Path:      v.GetString(KeyStoragePath),
			RedisAddr: v.GetString(KeyRedisAddr),
			Namespace: v.GetString(KeyNamespace),
		},
		Markdown:       v.GetBool(KeyMarkdown),
		MarkdownStyle:  v.GetString(KeyMarkdownStyle),
		WordWrap:       v.GetInt(KeyWordWrap),
		RequestTimeout: v.GetDuration(KeyRequestTimeout),
		Resume:         v.GetBool(KeyResume),
		Listen:         v.GetString(KeyListen),
	}
	return cfg, nil
}

func (l *Loader) setDefaults() {
	v := l.v
	v.SetDefault(KeyGreeting, DefaultGreeting)
	v.SetDefault(KeyConsole, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStorageDriver, storage.DriverFile)
	if l.ConfigDir != "" {
		v.SetDefault(KeyStoragePath, filepath.Join(l.ConfigDir, "session.yaml"))
	}
	v.SetDefault(KeyMarkdown, true)
	v.SetDefault(KeyMarkdownStyle, "auto")
	v.SetDefault(KeyWordWrap, 80)
	v.SetDefault(KeyRequestTimeout, time.Duration(0))
	v.SetDefault(KeyResume, true)
	v.SetDefault(KeyListen, "127.0.0.1:8787")
}

// mergeDotEnv merges the HAINZELMAN_* entries of a .env file. A missing file
// is not an error.
func (l *Loader) mergeDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read .env file %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	values := make(map[string]interface{})
	for key, value := range envMap {
		if name, ok := keyFromEnv(key); ok {
			values[name] = value
		}
	}
	if len(values) == 0 {
		return nil
	}
	return l.v.MergeConfigMap(values)
}

// keyFromEnv maps HAINZELMAN_BASE_URL to base-url.
func keyFromEnv(name string) (string, bool) {
	prefix := EnvPrefix + "_"
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return "", false
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "_", "-"), true
}

// Validate checks the settings needed to talk to a backend.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%s is required (flag --%s or %s)", KeyBaseURL, KeyBaseURL, EnvName(KeyBaseURL))
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeyBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", KeyBaseURL, c.BaseURL)
	}
	if c.WordWrap < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyWordWrap, c.WordWrap)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyRequestTimeout, c.RequestTimeout)
	}
	return nil
}

// EnvName returns the environment variable that sets key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
