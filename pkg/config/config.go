package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultVectorStoreURL  = "http://localhost:6333"
	DefaultEncoderProvider = "ollama"
	DefaultTransport       = "stdio"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultIdentityURL     = "https://api.github.com"
	DefaultIntrospectMode  = "python"
	DefaultPythonBin       = "python3"
	DefaultLogFormat       = "json"
)

// Config holds the server configuration. It is fixed once loaded.
type Config struct {
	// Module
	ModuleName string
	Collection string // defaults to ModuleName

	// Vector store
	VectorStoreURL    string // http(s):// for Qdrant, postgres:// for pgvector
	VectorStoreAPIKey string
	RecordsTable      string // pgvector only

	// Encoder
	EncoderProvider string
	EncoderModel    string // empty = provider default
	EncoderURL      string // empty = provider default
	EncoderAPIKey   string // Bearer token (empty = local)

	// Transport
	Transport string
	Host      string
	Port      int

	// Identity provider (networked transport only)
	IdentityURL   string
	OAuthClientID string

	// Live introspection
	IntrospectMode string
	IntrospectRoot string
	PythonBin      string

	// Logging
	LogFormat string
	Debug     bool
}

// key -> environment variables, first set wins
var envBindings = map[string][]string{
	"module_name":          {"MODULE_NAME"},
	"collection_name":      {"COLLECTION_NAME"},
	"vector_store_url":     {"VECTOR_STORE_URL", "QDRANT_URL"},
	"vector_store_api_key": {"VECTOR_STORE_API_KEY", "QDRANT_API_KEY"},
	"records_table":        {"RECORDS_TABLE"},
	"encoder_provider":     {"ENCODER_PROVIDER"},
	"encoder_model":        {"ENCODER_MODEL"},
	"encoder_url":          {"ENCODER_URL"},
	"encoder_api_key":      {"ENCODER_API_KEY"},
	"transport":            {"MCP_TRANSPORT"},
	"host":                 {"MCP_HOST"},
	"port":                 {"MCP_PORT"},
	"identity_url":         {"IDENTITY_URL"},
	"oauth_client_id":      {"OAUTH_CLIENT_ID"},
	"introspect_mode":      {"INTROSPECT_MODE"},
	"introspect_root":      {"INTROSPECT_ROOT"},
	"python_bin":           {"PYTHON_BIN"},
	"log_format":           {"LOG_FORMAT"},
	"debug":                {"DEBUG"},
}

// key -> command-line flag
var flagBindings = map[string]string{
	"module_name":      "module",
	"collection_name":  "collection",
	"vector_store_url": "store-url",
	"transport":        "transport",
	"host":             "host",
	"port":             "port",
	"introspect_mode":  "introspect",
	"log_format":       "log-format",
	"debug":            "debug",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("module", "", "Name of the module to serve (MODULE_NAME)")
	fs.String("collection", "", "Vector store collection, defaults to the module name (COLLECTION_NAME)")
	fs.String("store-url", DefaultVectorStoreURL, "Vector store URL (VECTOR_STORE_URL, QDRANT_URL)")
	fs.String("transport", DefaultTransport, "Transport: stdio, http or streamable-http (MCP_TRANSPORT)")
	fs.String("host", DefaultHost, "Listen host for the http transport (MCP_HOST)")
	fs.Int("port", DefaultPort, "Listen port for the http transport (MCP_PORT)")
	fs.String("introspect", DefaultIntrospectMode, "Live introspection: python, gosource or disabled (INTROSPECT_MODE)")
	fs.String("log-format", DefaultLogFormat, "Log format: json or text (LOG_FORMAT)")
}

// Load resolves the configuration from defaults, environment variables and,
// when fs is not nil, explicitly set flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("vector_store_url", DefaultVectorStoreURL)
	v.SetDefault("encoder_provider", DefaultEncoderProvider)
	v.SetDefault("transport", DefaultTransport)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("identity_url", DefaultIdentityURL)
	v.SetDefault("introspect_mode", DefaultIntrospectMode)
	v.SetDefault("python_bin", DefaultPythonBin)
	v.SetDefault("log_format", DefaultLogFormat)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if fs != nil {
		for key, name := range flagBindings {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{
		ModuleName:        strings.TrimSpace(v.GetString("module_name")),
		Collection:        strings.TrimSpace(v.GetString("collection_name")),
		VectorStoreURL:    v.GetString("vector_store_url"),
		VectorStoreAPIKey: v.GetString("vector_store_api_key"),
		RecordsTable:      v.GetString("records_table"),
		EncoderProvider:   strings.ToLower(v.GetString("encoder_provider")),
		EncoderModel:      v.GetString("encoder_model"),
		EncoderURL:        v.GetString("encoder_url"),
		EncoderAPIKey:     v.GetString("encoder_api_key"),
		Transport:         strings.ToLower(v.GetString("transport")),
		Host:              v.GetString("host"),
		Port:              v.GetInt("port"),
		IdentityURL:       v.GetString("identity_url"),
		OAuthClientID:     v.GetString("oauth_client_id"),
		IntrospectMode:    strings.ToLower(v.GetString("introspect_mode")),
		IntrospectRoot:    v.GetString("introspect_root"),
		PythonBin:         v.GetString("python_bin"),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
		Debug:             v.GetBool("debug"),
	}
	if cfg.Collection == "" {
		cfg.Collection = cfg.ModuleName
	}
	return cfg, nil
}

// ServerName is the name announced to protocol clients.
func (c *Config) ServerName() string {
	return c.ModuleName + "_pack"
}

// Networked reports whether the configured transport listens on a port.
func (c *Config) Networked() bool {
	return c.Transport == "http" || c.Transport == "streamable-http"
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ModuleName == "" {
		errs = append(errs, errors.New("module name is required (MODULE_NAME or --module)"))
	} else if strings.ContainsAny(c.ModuleName, " \t\n/") {
		errs = append(errs, fmt.Errorf("invalid module name %q", c.ModuleName))
	}

	switch c.Transport {
	case "stdio":
	case "http", "streamable-http":
		if c.Port < 1 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}

	switch c.EncoderProvider {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown encoder provider %q", c.EncoderProvider))
	}

	switch c.IntrospectMode {
	case "python", "gosource", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unknown introspection mode %q", c.IntrospectMode))
	}
	if c.IntrospectMode == "gosource" && c.IntrospectRoot == "" {
		errs = append(errs, errors.New("gosource introspection requires INTROSPECT_ROOT"))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
