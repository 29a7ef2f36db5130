package reconcile

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"manifest-reconciler/core/tree"
)

// appPlaceholder is the segment app paths are normalized to before comparison.
const appPlaceholder = "/ocvapps/<APP>/"

// Settings holds reconcile configuration as loaded from the environment.
// Call Build to obtain the Config used at runtime.
type Settings struct {
	// IgnoredKeys are skipped wherever encountered, at any depth.
	IgnoredKeys []string `mapstructure:"ignored_keys" default:"url,imageURL,analyticsName,appID,backgroundImageURL"`
	// IgnoredHeaderPrefixes drop whole headers whose name starts with one of them.
	IgnoredHeaderPrefixes []string `mapstructure:"ignored_header_prefixes" default:"30,demo,TEST,OLD,_,tier"`
	// StableKeyFields are tried in order to identify list elements.
	// Composite keys join dotted field paths with '+'.
	StableKeyFields []string `mapstructure:"stable_key_fields" default:"featureID,type+payload.headerText,type"`
	// LabelKeys are counted in the key label summary.
	LabelKeys []string `mapstructure:"label_keys" default:"featureID,headerText,title"`
	// AppPathPattern matches app-specific path segments inside string values.
	AppPathPattern string `mapstructure:"app_path_pattern" default:"(?i)/ocvapps/[^/]+/"`
	// MasterTemplate names the master header used when master lacks a header.
	MasterTemplate string `mapstructure:"master_template" default:""`
	// Workers bounds per-header parallelism. Zero means one per CPU.
	Workers int `mapstructure:"workers" default:"0"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		IgnoredKeys:           []string{"url", "imageURL", "analyticsName", "appID", "backgroundImageURL"},
		IgnoredHeaderPrefixes: []string{"30", "demo", "TEST", "OLD", "_", "tier"},
		StableKeyFields:       []string{"featureID", "type+payload.headerText", "type"},
		LabelKeys:             []string{"featureID", "headerText", "title"},
		AppPathPattern:        `(?i)/ocvapps/[^/]+/`,
	}
}

// Config is the explicit rule set handed to every reconcile component.
type Config struct {
	IgnoredKeys           map[string]struct{}
	IgnoredHeaderPrefixes []string
	StableKeyFields       []string
	LabelKeys             map[string]struct{}
	// AppPath is nil when app path normalization is disabled.
	AppPath        *regexp.Regexp
	MasterTemplate string
	Workers        int
}

// Build validates the settings and converts them into a Config.
func (s Settings) Build() (Config, error) {
	cfg := Config{
		IgnoredKeys:           toSet(s.IgnoredKeys),
		IgnoredHeaderPrefixes: clean(s.IgnoredHeaderPrefixes),
		StableKeyFields:       clean(s.StableKeyFields),
		LabelKeys:             toSet(s.LabelKeys),
		MasterTemplate:        strings.TrimSpace(s.MasterTemplate),
		Workers:               s.Workers,
	}

	for _, field := range cfg.StableKeyFields {
		for _, part := range strings.Split(field, "+") {
			if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
				return Config{}, fmt.Errorf("invalid stable key field %q", field)
			}
			// payload.headerText is counted as headerText.
			cfg.LabelKeys[part[strings.LastIndex(part, ".")+1:]] = struct{}{}
		}
	}

	if pattern := strings.TrimSpace(s.AppPathPattern); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Config{}, fmt.Errorf("invalid app path pattern: %w", err)
		}
		cfg.AppPath = re
	}

	if cfg.Workers < 0 {
		return Config{}, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return cfg, nil
}

// DefaultConfig returns the Config built from DefaultSettings.
func DefaultConfig() Config {
	cfg, err := DefaultSettings().Build()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Matcher returns the tree comparison rules for this configuration.
func (c Config) Matcher() tree.Matcher {
	return tree.Matcher{
		StableKeys: c.StableKeyFields,
		Ignored:    c.IgnoredKeys,
		Normalize:  c.normalize,
	}
}

func (c Config) normalize(s string) string {
	if c.AppPath == nil {
		return s
	}
	return c.AppPath.ReplaceAllLiteralString(s, appPlaceholder)
}

// IsLabel reports whether key is counted in the key label summary: a
// configured label key or the last segment of a stable key field.
func (c Config) IsLabel(key string) bool {
	_, ok := c.LabelKeys[key]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range clean(values) {
		set[v] = struct{}{}
	}
	return set
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
