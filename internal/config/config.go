// Package config builds the process configuration once at startup from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"

	"github.com/sasanktumpati/polyglot/internal/languages"
)

const (
	envPrefix          = "POLYGLOT"
	defaultEnvFile     = ".env"
	defaultGeminiModel = "gemini-2.0-flash"
	defaultOpenAIModel = "gpt-5-nano"
)

// Config is the explicit configuration threaded through the CLI, router and
// team. It is not re-read after startup.
type Config struct {
	Provider           string        `split_words:"true" default:"gemini" validate:"oneof=gemini openai openrouter anthropic ollama custom"`
	Model              string        `split_words:"true"`
	BaseURL            string        `split_words:"true" validate:"omitempty,url"`
	SupportedLanguages []string      `split_words:"true" default:"English,Japanese,Chinese,German" validate:"min=1"`
	Classifier         string        `split_words:"true" default:"auto" validate:"oneof=auto local model"`
	MinConfidence      float64       `split_words:"true" default:"0.8" validate:"gte=0,lte=1"`
	Timeout            time.Duration `split_words:"true" default:"90s" validate:"gt=0"`
	RenderMarkdown     bool          `split_words:"true" default:"true"`
	Stream             bool          `split_words:"true" default:"true"`
	Debug              bool          `envconfig:"DEBUG_MODE" default:"false"`
	APIKey             string        `split_words:"true"`
	ProviderKey        ProviderKeys  `ignored:"true"`
}

// ProviderKeys holds the vendor credential variables. They are read without
// the POLYGLOT_ prefix so existing shells and .env files keep working.
type ProviderKeys struct {
	Google     string `envconfig:"GOOGLE_API_KEY"`
	Gemini     string `envconfig:"GEMINI_API_KEY"`
	OpenAI     string `envconfig:"OPENAI_API_KEY"`
	OpenRouter string `envconfig:"OPENROUTER_API_KEY"`
	Anthropic  string `envconfig:"ANTHROPIC_API_KEY"`
}

// BuiltinDefaults describes how a provider is reached and authenticated.
type BuiltinDefaults struct {
	APIKeyEnv    string
	DefaultModel string
	RequiresKey  bool
}

var builtinProviders = map[string]BuiltinDefaults{
	"anthropic":  {APIKeyEnv: "ANTHROPIC_API_KEY", RequiresKey: true},
	"gemini":     {APIKeyEnv: "GOOGLE_API_KEY", DefaultModel: defaultGeminiModel, RequiresKey: true},
	"ollama":     {},
	"openai":     {APIKeyEnv: "OPENAI_API_KEY", DefaultModel: defaultOpenAIModel, RequiresKey: true},
	"openrouter": {APIKeyEnv: "OPENROUTER_API_KEY", RequiresKey: true},
	"custom":     {APIKeyEnv: "POLYGLOT_API_KEY"},
}

// BuiltinProviderDefaults returns defaults for provider.
func BuiltinProviderDefaults(provider string) (BuiltinDefaults, bool) {
	defaults, ok := builtinProviders[strings.ToLower(strings.TrimSpace(provider))]
	return defaults, ok
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load decodes the environment into a Config. It does not validate; call
// Validate once CLI overrides have been applied.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, &Error{Field: "environment", Msg: err.Error()}
	}
	if err := envconfig.Process("", &cfg.ProviderKey); err != nil {
		return nil, &Error{Field: "environment", Msg: err.Error()}
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Classifier = strings.ToLower(strings.TrimSpace(c.Classifier))
	c.Model = strings.TrimSpace(c.Model)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.SupportedLanguages = NormalizeLanguages(c.SupportedLanguages)
}

// NormalizeLanguages puts tags in canonical form and drops empty entries.
// Order and duplicates are preserved; duplicates are rejected by the
// registry.
func NormalizeLanguages(tags []string) []string {
	return lo.Compact(lo.Map(tags, func(tag string, _ int) string {
		return languages.Canonical(tag)
	}))
}

var validate = validator.New()

// Validate checks field constraints and the presence of the credential the
// selected provider needs. Failures are *Error values.
func (c *Config) Validate() error {
	c.normalize()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &Error{Field: "config", Msg: err.Error()}
	}
	if c.Provider == "custom" && c.BaseURL == "" {
		return &Error{Field: "POLYGLOT_BASE_URL", Msg: "custom provider requires POLYGLOT_BASE_URL"}
	}
	defaults, _ := BuiltinProviderDefaults(c.Provider)
	if defaults.RequiresKey && c.ResolveAPIKey() == "" {
		return &Error{
			Field: defaults.APIKeyEnv,
			Msg:   fmt.Sprintf("%s API key not found. Please set %s environment variable.", providerTitle(c.Provider), defaults.APIKeyEnv),
			Hint:  keyHint(defaults.APIKeyEnv),
		}
	}
	return nil
}

// ResolveAPIKey returns the credential for the selected provider,
// preferring POLYGLOT_API_KEY over the vendor variable.
func (c *Config) ResolveAPIKey() string {
	if v := strings.TrimSpace(c.APIKey); v != "" {
		return v
	}
	keys := c.ProviderKey
	var candidates []string
	switch c.Provider {
	case "gemini":
		candidates = []string{keys.Google, keys.Gemini}
	case "openai":
		candidates = []string{keys.OpenAI}
	case "openrouter":
		candidates = []string{keys.OpenRouter}
	case "anthropic":
		candidates = []string{keys.Anthropic}
	}
	for _, v := range candidates {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ResolveModel returns the configured model or the provider default. An
// empty result means the model must be discovered from the provider.
func (c *Config) ResolveModel() string {
	if c.Model != "" {
		return c.Model
	}
	defaults, _ := BuiltinProviderDefaults(c.Provider)
	return defaults.DefaultModel
}

func providerTitle(provider string) string {
	switch provider {
	case "gemini":
		return "Google"
	case "openai":
		return "OpenAI"
	case "openrouter":
		return "OpenRouter"
	case "anthropic":
		return "Anthropic"
	default:
		return provider
	}
}

func keyHint(env string) []string {
	return []string{
		"Create a .env file in the project root",
		fmt.Sprintf("Add your %s: %s=your_api_key_here", keyLabel(env), env),
	}
}

func keyLabel(env string) string {
	if env == "GOOGLE_API_KEY" {
		return "Google API key"
	}
	return "API key"
}

func fieldError(fe validator.FieldError) *Error {
	field := envName(fe.StructField())
	switch fe.Tag() {
	case "min":
		if fe.StructField() == "SupportedLanguages" {
			return &Error{Field: field, Msg: "at least one supported language is required"}
		}
	case "oneof":
		return &Error{Field: field, Msg: fmt.Sprintf("%q is not one of: %s", fe.Value(), fe.Param())}
	case "gt":
		return &Error{Field: field, Msg: fmt.Sprintf("must be greater than %s", fe.Param())}
	case "gte", "lte":
		return &Error{Field: field, Msg: fmt.Sprintf("%v is outside 0..1", fe.Value())}
	case "url":
		return &Error{Field: field, Msg: fmt.Sprintf("%q is not a valid URL", fe.Value())}
	}
	return &Error{Field: field, Msg: fe.Error()}
}

func envName(structField string) string {
	switch structField {
	case "SupportedLanguages":
		return envPrefix + "_SUPPORTED_LANGUAGES"
	case "BaseURL":
		return envPrefix + "_BASE_URL"
	case "RenderMarkdown":
		return envPrefix + "_RENDER_MARKDOWN"
	case "MinConfidence":
		return envPrefix + "_MIN_CONFIDENCE"
	default:
		return envPrefix + "_" + strings.ToUpper(structField)
	}
}
