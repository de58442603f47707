package guidebook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/afs"
	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/service/optimizer"
	"github.com/viant/guidebook/service/profile"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the session configuration.
// The zero value of every nested field inherits its package default.
type Config struct {
	Profile  ProfileConfig          `json:"profile" yaml:"profile"`
	Optimize optimizer.Optimization `json:"optimize" yaml:"optimize"`
	Shell    ShellConfig            `json:"shell" yaml:"shell"`
	Policy   *policy.Config         `json:"policy,omitempty" yaml:"policy,omitempty"`
	Log      logx.Config            `json:"log" yaml:"log"`
	Tracing  TracingConfig          `json:"tracing" yaml:"tracing"`
}

type ProfileConfig struct {
	// URL is the directory holding profile files.
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Debounce is the window within which answers coalesce into one write.
	Debounce time.Duration `json:"debounce,omitempty" yaml:"debounce,omitempty"`
	// Disabled keeps answers in memory only.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	// Bump updates the profile's last used time on start.
	Bump bool `json:"bump,omitempty" yaml:"bump,omitempty"`
}

type ShellConfig struct {
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

type TracingConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Output is a trace file; stdout when empty.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultProfileName names the profile used when none is selected.
const DefaultProfileName = "default"

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Profile: ProfileConfig{
			URL:      defaultProfileURL(),
			Name:     DefaultProfileName,
			Debounce: profile.DefaultDebounce,
			Bump:     true,
		},
		Shell: ShellConfig{TimeoutMs: 10 * 60 * 1000},
	}
}

func defaultProfileURL() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".guidebook", "profiles")
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var issues []error
	if c.Profile.Name == "" {
		issues = append(issues, fmt.Errorf("profile.name was empty"))
	}
	if c.Profile.URL == "" && !c.Profile.Disabled {
		issues = append(issues, fmt.Errorf("profile.url was empty"))
	}
	if c.Profile.Debounce < 0 {
		issues = append(issues, fmt.Errorf("profile.debounce must be >= 0"))
	}
	if c.Shell.TimeoutMs <= 0 {
		issues = append(issues, fmt.Errorf("shell.timeoutMs must be > 0"))
	}
	if c.Policy != nil {
		switch c.Policy.Mode {
		case "", policy.ModeAuto, policy.ModeAsk, policy.ModeDeny:
		default:
			issues = append(issues, fmt.Errorf("unsupported policy.mode: %v", c.Policy.Mode))
		}
	}
	return errors.Join(issues...)
}

// LoadConfig reads a YAML config from URL over DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	return ret, ret.Validate()
}
