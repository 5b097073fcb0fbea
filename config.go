package proxygen

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//   ██████╗ ██████╗ ███╗   ██╗███████╗██╗ ██████╗
//  ██╔════╝██╔═══██╗████╗  ██║██╔════╝██║██╔════╝
//  ██║     ██║   ██║██╔██╗ ██║█████╗  ██║██║  ███╗
//  ██║     ██║   ██║██║╚██╗██║██╔══╝  ██║██║   ██║
//  ╚██████╗╚██████╔╝██║ ╚██╗██║██║     ██║╚██████╔╝
//   ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝     ╚═╝ ╚═════╝
//

// Config is the top-level shape of a proxygen boot file, decoded from
// YAML.
type Config struct {
	Timeout      int                       `yaml:"timeout" default:"10" validate:"required"`
	VerifyTarget string                    `yaml:"verify_target" default:"http://httpbin.org/ip"`
	Filter       FilterConfig              `yaml:"filter"`
	Dashboard    DashboardConfig           `yaml:"dashboard"`
	Providers    map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig is one entry of Config.Providers, keyed by the provider's
// stable name (the same string its Provider.Name() returns). Enabled is a
// pointer so an absent key in YAML is distinguishable from an explicit
// "enabled: false": absent means "on, with the default URL". A non-empty
// URL overrides the provider's built-in listing URL.
type ProviderConfig struct {
	Enabled *bool  `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// FilterConfig mirrors ProxyFilter's builder knobs in a YAML-friendly
// shape; BuildFilter turns it into a ProxyFilter.
type FilterConfig struct {
	Types            []string `yaml:"types"`
	IncludeCountries []string `yaml:"include_countries"`
	ExcludeCountries []string `yaml:"exclude_countries"`
	MaxLatencyMS     int      `yaml:"max_latency_ms"`
}

// DashboardConfig controls whether the live WebSocket dashboard starts.
type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" default:"8090"`
}

// LoadConfig reads and decodes a YAML file at path, applies defaults to
// any zero-valued field tagged `default:"..."`, and exits the process if
// a field tagged `validate:"required"` is still zero afterward.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	setDefaultValues(cfg)
	setDefaultValues(&cfg.Dashboard)
	validate(cfg)

	return cfg, nil
}

func parseProxyType(s string) ProxyType {
	switch s {
	case "http":
		return Http
	case "https":
		return Https
	case "socks4":
		return Socks4
	case "socks5":
		return Socks5
	default:
		return Unknown
	}
}

// Apply pushes this config's verification knobs into the package-level
// verifier settings. Call once at startup before Run.
func (c *Config) Apply() {
	if c.VerifyTarget != "" {
		verifyEndpoint = c.VerifyTarget
	}
	if c.Timeout > 0 {
		verifyTimeout = time.Duration(c.Timeout) * time.Second
	}
}

// BuildFilter translates a FilterConfig (typically decoded from YAML or
// assembled from CLI flags) into a ProxyFilter.
func BuildFilter(fc FilterConfig) ProxyFilter {
	return buildFilter(fc)
}

// BuildProviders resolves a config's per-provider settings into concrete
// Providers.
func BuildProviders(cfg map[string]ProviderConfig) []Provider {
	return buildProviders(cfg)
}

// buildFilter translates FilterConfig into a ProxyFilter.
func buildFilter(fc FilterConfig) ProxyFilter {
	f := NewFilter()

	if len(fc.Types) > 0 {
		types := make([]ProxyType, 0, len(fc.Types))
		for _, t := range fc.Types {
			types = append(types, parseProxyType(t))
		}
		f = f.WithTypes(types...)
	}

	if len(fc.IncludeCountries) > 0 {
		f = f.WithIncludeCountries(fc.IncludeCountries...)
	}
	if len(fc.ExcludeCountries) > 0 {
		f = f.WithExcludeCountries(fc.ExcludeCountries...)
	}
	if fc.MaxLatencyMS > 0 {
		f = f.WithMaxLatency(time.Duration(fc.MaxLatencyMS) * time.Millisecond)
	}

	return f
}
