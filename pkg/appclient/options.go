package appclient

import (
	"github.com/effective-security/keybroker/pkg/azureconfig"
)

// DefaultTitleModel is used for titles when no title model is configured
const DefaultTitleModel = "gpt-3.5-turbo"

// EndpointOption provides the request level options of the endpoint
type EndpointOption struct {
	// ModelOptions are the model parameters of the request, such as `model` and `temperature`
	ModelOptions map[string]any `json:"model_options,omitempty" yaml:"model_options,omitempty"`
	// ResendFiles specifies to resend files of the conversation
	ResendFiles bool `json:"resend_files,omitempty" yaml:"resend_files,omitempty"`
	// MaxContextTokens limits the conversation context
	MaxContextTokens int `json:"max_context_tokens,omitempty" yaml:"max_context_tokens,omitempty"`
}

// Options of the application client
type Options struct {
	ReverseProxyURL string
	Proxy           string
	Organization    string
	MaxRetries      int

	Headers      map[string]string
	DefaultQuery map[string]string

	EndpointOption

	TitleConvo  bool
	TitleModel  string
	TitleMethod string

	// AddParams are set on every request body
	AddParams map[string]any
	// DropParams are removed from every request body
	DropParams []string
	// ForcePrompt uses the legacy completions API
	ForcePrompt bool

	// Azure enables structured Azure deployment auth, it is nil for serverless groups
	Azure *azureconfig.AzureOptions
}

// Model returns the model of the request options
func (o *Options) Model() string {
	if m, ok := o.ModelOptions["model"].(string); ok {
		return m
	}
	return ""
}
