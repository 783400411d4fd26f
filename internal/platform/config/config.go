package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. It is built once in main and
// passed to every constructor; nothing reads the environment afterwards.
type Config struct {
	Server   Server   `yaml:"server"`
	Identity Identity `yaml:"identity"`
	Token    Token    `yaml:"token"`
	Catalog  Catalog  `yaml:"catalog"`
	Log      Log      `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string   `yaml:"addr"`
	AppName            string   `yaml:"app_name"`
	AppVersion         string   `yaml:"app_version"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// Identity describes the identity provider (Entra ID) and the mock switch.
type Identity struct {
	MockMode        bool          `yaml:"mock_mode"`
	TenantID        string        `yaml:"tenant_id"`
	ClientID        string        `yaml:"client_id"`
	ClientSecret    string        `yaml:"client_secret"`
	RedirectURI     string        `yaml:"redirect_uri"`
	Authority       string        `yaml:"authority"`
	ExchangeTimeout time.Duration `yaml:"exchange_timeout"`
}

// Token configures gateway-issued access tokens.
type Token struct {
	Secret            string `yaml:"secret"`
	Algorithm         string `yaml:"algorithm"`
	ExpirationMinutes int    `yaml:"expiration_minutes"`
}

// Catalog configures the gated resources.
type Catalog struct {
	BinariesDir  string `yaml:"binaries_dir"`
	ProxyBaseURL string `yaml:"proxy_base_url"`
	DefaultModel string `yaml:"default_model"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the development configuration: mock identity provider and
// a well-known signing secret.
func Default() Config {
	return Config{
		Server: Server{
			Addr:               ":8000",
			AppName:            "Wrapper AI Proxy",
			AppVersion:         "1.0.0",
			CORSAllowedOrigins: []string{"*"},
		},
		Identity: Identity{
			MockMode:        true,
			TenantID:        "mock-tenant-id",
			ClientID:        "mock-client-id",
			ClientSecret:    "mock-client-secret",
			RedirectURI:     "http://localhost:8000/sso/callback",
			ExchangeTimeout: 10 * time.Second,
		},
		Token: Token{
			// Use a default for development - should be overridden in production
			Secret:            "super-secret-mock-key-change-in-prod",
			Algorithm:         "HS256",
			ExpirationMinutes: 60,
		},
		Catalog: Catalog{
			BinariesDir:  "./cli_binaries",
			ProxyBaseURL: "https://ai-proxy.domain.local/v1",
			DefaultModel: "claude-sonnet-4-20250514",
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// FromEnv builds a Config from defaults and environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load reads an optional YAML file over the defaults, then applies
// environment overrides. An empty path behaves like FromEnv.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error

	str("GATEWAY_ADDR", &c.Server.Addr)
	str("APP_NAME", &c.Server.AppName)
	str("APP_VERSION", &c.Server.AppVersion)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}

	if v, ok := lookup("MOCK_MODE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MOCK_MODE: %w", err))
		}
		c.Identity.MockMode = b
	}
	str("ENTRA_TENANT_ID", &c.Identity.TenantID)
	str("ENTRA_CLIENT_ID", &c.Identity.ClientID)
	str("ENTRA_CLIENT_SECRET", &c.Identity.ClientSecret)
	str("ENTRA_REDIRECT_URI", &c.Identity.RedirectURI)
	str("ENTRA_AUTHORITY", &c.Identity.Authority)
	if v, ok := lookup("EXCHANGE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("EXCHANGE_TIMEOUT: %w", err))
		}
		c.Identity.ExchangeTimeout = d
	}

	str("JWT_SECRET", &c.Token.Secret)
	str("JWT_ALGORITHM", &c.Token.Algorithm)
	if v, ok := lookup("JWT_EXPIRATION_MINUTES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("JWT_EXPIRATION_MINUTES: %w", err))
		}
		c.Token.ExpirationMinutes = n
	}

	str("CLI_BINARIES_DIR", &c.Catalog.BinariesDir)
	str("PROXY_BASE_URL", &c.Catalog.ProxyBaseURL)
	str("DEFAULT_MODEL", &c.Catalog.DefaultModel)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the gateway cannot run with.
func (c Config) Validate() error {
	var errs []error
	if _, ok := jwt.GetSigningMethod(c.Token.Algorithm).(*jwt.SigningMethodHMAC); !ok {
		errs = append(errs, fmt.Errorf("token algorithm %q is not an HMAC algorithm", c.Token.Algorithm))
	}
	if c.Token.Secret == "" {
		errs = append(errs, errors.New("token secret is required"))
	}
	if c.Token.ExpirationMinutes <= 0 {
		errs = append(errs, errors.New("token expiration must be positive"))
	}
	if c.Identity.ExchangeTimeout <= 0 {
		errs = append(errs, errors.New("exchange timeout must be positive"))
	}
	if c.Identity.ClientID == "" {
		errs = append(errs, errors.New("identity client id is required"))
	}
	if !c.Identity.MockMode {
		if c.Identity.ClientSecret == "" {
			errs = append(errs, errors.New("identity client secret is required outside mock mode"))
		}
		if c.Identity.RedirectURI == "" {
			errs = append(errs, errors.New("identity redirect uri is required outside mock mode"))
		}
	}
	return errors.Join(errs...)
}

// AuthorityURL is the identity provider authority, derived from the tenant
// unless set explicitly.
func (i Identity) AuthorityURL() string {
	if i.Authority != "" {
		return strings.TrimRight(i.Authority, "/")
	}
	return "https://login.microsoftonline.com/" + i.TenantID
}

func (i Identity) AuthorizeURL() string { return i.AuthorityURL() + "/oauth2/v2.0/authorize" }

func (i Identity) TokenURL() string { return i.AuthorityURL() + "/oauth2/v2.0/token" }

func (i Identity) JWKSURL() string { return i.AuthorityURL() + "/discovery/v2.0/keys" }

// ProviderIssuer is the issuer of v2.0 tokens minted by the provider itself.
func (i Identity) ProviderIssuer() string { return i.AuthorityURL() + "/v2.0" }

// Lifetime is the configured access token lifetime.
func (t Token) Lifetime() time.Duration {
	return time.Duration(t.ExpirationMinutes) * time.Minute
}
