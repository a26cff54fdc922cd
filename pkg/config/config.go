// Package config provides the process configuration of the endpoints.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/credentials"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Endpoint names
const (
	EndpointAzureAssistants = "azureAssistants"
	EndpointAssistants      = "assistants"
)

// Environment variables
const (
	EnvProxy                  = "PROXY"
	EnvOrganization           = "OPENAI_ORGANIZATION"
	EnvAzureAssistantsAPIKey  = "AZURE_ASSISTANTS_API_KEY"
	EnvAzureAssistantsBaseURL = "AZURE_ASSISTANTS_BASE_URL"
	EnvAssistantsAPIKey       = "ASSISTANTS_API_KEY"
	EnvAssistantsBaseURL      = "ASSISTANTS_BASE_URL"
	EnvAzureConfig            = "AZURE_OPENAI_CONFIG"
	EnvCredsKey               = "CREDS_KEY"
	EnvRedisURI               = "REDIS_URI"
)

// Config is the process configuration
type Config struct {
	// Proxy specifies the proxy URL for all upstream calls
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	// Organization is the OpenAI organization
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
	// MaxRetries specifies the number of retries of upstream calls,
	// 0 disables retries
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"min=0,max=10"`

	// Endpoints specifies the operator credentials by endpoint name,
	// each value can be set to `user_provided`
	Endpoints map[string]*credentials.EndpointCredentials `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`

	// AzureConfig is the path to the Azure OpenAI groups configuration file
	AzureConfig string `json:"azure_config,omitempty" yaml:"azure_config,omitempty"`
	// WatchAzureConfig specifies to reload the Azure configuration on change
	WatchAzureConfig bool `json:"watch_azure_config,omitempty" yaml:"watch_azure_config,omitempty"`

	// CredsKey is hex encoded 32 bytes master key for user keys
	CredsKey string `json:"creds_key,omitempty" yaml:"creds_key,omitempty" validate:"omitempty,hexadecimal,len=64"`

	// Redis specifies the shared store of user keys and vector stores,
	// the process memory is used if not set
	Redis *RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// RedisConfig specifies Redis connection
type RedisConfig struct {
	URL    string `json:"url" yaml:"url" validate:"required"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Endpoint returns the credentials of the endpoint
func (c *Config) Endpoint(name string) credentials.EndpointCredentials {
	ep := credentials.EndpointCredentials{Name: name}
	if e := c.Endpoints[name]; e != nil {
		ep.APIKey = e.APIKey
		ep.BaseURL = e.BaseURL
	}
	return ep
}

// LoadConfig from file, the values not set in the file are read
// from the environment.
// If file is empty, the configuration is read from the environment only.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		err := configloader.UnmarshalAndExpand(file, cfg)
		if err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns configuration from the environment
func FromEnv() *Config {
	cfg := new(Config)
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv sets the values that are not configured from the environment
func (c *Config) ApplyEnv() {
	c.Proxy = values.StringsCoalesce(c.Proxy, os.Getenv(EnvProxy))
	c.Organization = values.StringsCoalesce(c.Organization, os.Getenv(EnvOrganization))
	c.AzureConfig = values.StringsCoalesce(c.AzureConfig, os.Getenv(EnvAzureConfig))
	c.CredsKey = values.StringsCoalesce(c.CredsKey, os.Getenv(EnvCredsKey))

	if c.Redis == nil {
		if uri := os.Getenv(EnvRedisURI); uri != "" {
			c.Redis = &RedisConfig{URL: uri}
		}
	}

	c.applyEndpointEnv(EndpointAzureAssistants, EnvAzureAssistantsAPIKey, EnvAzureAssistantsBaseURL)
	c.applyEndpointEnv(EndpointAssistants, EnvAssistantsAPIKey, EnvAssistantsBaseURL)
}

func (c *Config) applyEndpointEnv(name, keyEnv, urlEnv string) {
	key := os.Getenv(keyEnv)
	url := os.Getenv(urlEnv)

	ep := c.Endpoints[name]
	if ep == nil {
		if key == "" && url == "" {
			return
		}
		ep = &credentials.EndpointCredentials{}
		if c.Endpoints == nil {
			c.Endpoints = make(map[string]*credentials.EndpointCredentials)
		}
		c.Endpoints[name] = ep
	}
	ep.Name = name
	ep.APIKey = values.StringsCoalesce(ep.APIKey, key)
	ep.BaseURL = values.StringsCoalesce(ep.BaseURL, url)
}

var validate = validator.New()

// Validate returns error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// LoadDotEnv loads environment variables from the files,
// the variables that are already set are not changed.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return errors.Wrapf(err, "failed to load %s", file)
		}
	}
	return nil
}
