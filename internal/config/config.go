// Package config loads client and server settings for the RPC runtime.
// file: internal/config/config.go
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/gosoa/internal/logging"
)

var logger = logging.GetLogger("config")

// TransportConfig names a transport implementation and its constructor options.
type TransportConfig struct {
	Path    string                 `yaml:"path"`
	Kwargs  map[string]interface{} `yaml:"kwargs,omitempty"`
}

// SerializerConfig names a serializer implementation and its constructor options.
type SerializerConfig struct {
	Path   string                 `yaml:"path"`
	Kwargs map[string]interface{} `yaml:"kwargs,omitempty"`
}

// MiddlewareConfig names a middleware constructor and its options, in onion order.
type MiddlewareConfig struct {
	Path   string                 `yaml:"path"`
	Kwargs map[string]interface{} `yaml:"kwargs,omitempty"`
}

// ExpansionConfig is the raw, file-shaped expansion configuration for one service.
// Accepts both "route" (current) and "type" (legacy) keys on each expansion entry.
type ExpansionConfig struct {
	TypeExpansions map[string][]RawExpansionEntry `yaml:"type_expansions"`
}

// RawExpansionEntry mirrors one dotted-path expansion definition as it appears in YAML.
type RawExpansionEntry struct {
	Route             string `yaml:"route"`
	RouteLegacy        string `yaml:"type"` // accepted for backward compatibility with pre-route configs
	SourceField        string `yaml:"source_field"`
	DestField          string `yaml:"destination_field"`
	RaiseActionErrors  bool   `yaml:"raise_action_errors"`
}

// ResolvedRoute returns Route if set, else falls back to the legacy "type" key.
func (e RawExpansionEntry) ResolvedRoute() string {
	if e.Route != "" {
		return e.Route
	}
	return e.RouteLegacy
}

// ServiceClientConfig is the per-service configuration entry inside ClientSettings.
type ServiceClientConfig struct {
	Transport  TransportConfig    `yaml:"transport"`
	Serializer SerializerConfig   `yaml:"serializer"`
	Middleware []MiddlewareConfig `yaml:"middleware"`
}

// ClientSettings configures a Client's per-service handler construction.
type ClientSettings struct {
	Services  map[string]ServiceClientConfig `yaml:"services"`
	Expansion *ExpansionConfig               `yaml:"expansions,omitempty"`
}

// ServerSettings configures a Server's identity and dispatch chain.
type ServerSettings struct {
	ServiceName string             `yaml:"service_name"`
	Middleware  []MiddlewareConfig `yaml:"middleware"`
}

// LoadClientSettings reads and parses a YAML client settings file.
func LoadClientSettings(path string) (*ClientSettings, error) {
	logger.Debug("loading client settings", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadClientSettings: reading %s", path)
	}
	var settings ClientSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrapf(err, "LoadClientSettings: parsing %s", path)
	}
	return &settings, nil
}

// LoadServerSettings reads and parses a YAML server settings file.
func LoadServerSettings(path string) (*ServerSettings, error) {
	logger.Debug("loading server settings", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadServerSettings: reading %s", path)
	}
	var settings ServerSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrapf(err, "LoadServerSettings: parsing %s", path)
	}
	return &settings, nil
}
