package azureconfig

import (
	"os"
	"regexp"
	"strings"

	"github.com/effective-security/keybroker/pkg/errtypes"
	"github.com/effective-security/keybroker/pkg/userctx"
)

// EndpointName is the name of the Azure OpenAI configuration namespace
const EndpointName = "azureOpenAI"

// DefaultBaseURL is the URL template used when a group has no base URL
const DefaultBaseURL = "https://${INSTANCE_NAME}.openai.azure.com/openai"

// Header names
const (
	HeaderAPIKey = "api-key"
	HeaderBeta   = "OpenAI-Beta"
)

// AzureOptions are the resolved Azure deployment options
type AzureOptions struct {
	APIKey         string `json:"-"`
	APIVersion     string `json:"api_version,omitempty"`
	DeploymentName string `json:"deployment_name,omitempty"`
	InstanceName   string `json:"instance_name,omitempty"`
}

// Routing is the routing mode of an endpoint: Ungrouped or Grouped
type Routing interface {
	isRouting()
}

// Ungrouped routing uses the endpoint credentials as is
type Ungrouped struct{}

// Grouped routing maps the requested model to a deployment group
type Grouped struct {
	Snapshot *Snapshot
}

func (Ungrouped) isRouting() {}
func (Grouped) isRouting()   {}

// RoutingFor returns the routing for the assistants endpoint
func RoutingFor(s *Snapshot) Routing {
	if s == nil || !s.Assistants {
		return Ungrouped{}
	}
	return Grouped{Snapshot: s}
}

// Auth is the group auth mode: DeploymentAuth or ServerlessAuth
type Auth interface {
	isAuth()
}

// DeploymentAuth uses structured Azure credentials
type DeploymentAuth struct {
	Options AzureOptions
}

// ServerlessAuth injects the API key as a header
type ServerlessAuth struct {
	APIKey     string
	APIVersion string
}

func (DeploymentAuth) isAuth() {}
func (ServerlessAuth) isAuth() {}

// Mapping is the result of mapping a model to its group
type Mapping struct {
	ModelName string
	GroupName string
	Group     *Group
	// AzureOptions always carries the API key and version,
	// deployment and instance are empty for serverless groups.
	AzureOptions AzureOptions
	// BaseURL is the explicit group base URL, if any
	BaseURL string
	Headers map[string]string
	Auth    Auth
}

// Serverless returns true for header based auth
func (m *Mapping) Serverless() bool {
	_, ok := m.Auth.(ServerlessAuth)
	return ok
}

// URL returns the base URL with placeholders substituted,
// the explicit group base URL is preferred over DefaultBaseURL.
func (m *Mapping) URL() string {
	base := m.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return ConstructURL(base, &m.AzureOptions)
}

// ComposeHeaders returns the group headers merged with the API key and
// the assistants beta header, resolved for the user.
func (m *Mapping) ComposeHeaders(version string, user *userctx.User) map[string]string {
	headers := make(map[string]string, len(m.Headers)+2)
	for k, v := range m.Headers {
		headers[k] = v
	}
	headers[HeaderAPIKey] = m.AzureOptions.APIKey
	if version != "" {
		headers[HeaderBeta] = "assistants=" + version
	}
	return ResolveHeaders(headers, user)
}

// MapModel maps the model to its deployment group.
// The model must be chosen by the caller, no defaults are applied.
func MapModel(modelName string, s *Snapshot) (*Mapping, error) {
	mg, ok := s.ModelGroupMap[modelName]
	if !ok {
		return nil, errtypes.InvalidConfig(EndpointName, "model %q not found in configuration", modelName)
	}
	g, ok := s.GroupMap[mg.Group]
	if !ok || g == nil {
		return nil, errtypes.InvalidConfig(EndpointName, "group %q not found in configuration", mg.Group)
	}

	m := &Mapping{
		ModelName: modelName,
		GroupName: g.Name,
		Group:     g,
		Headers:   g.Headers,
	}

	if g.BaseURL != "" {
		m.BaseURL = ExtractEnvVariable(g.BaseURL)
		if IsEnvReference(m.BaseURL) {
			return nil, errtypes.InvalidConfig(EndpointName, "environment variable %q was not found", m.BaseURL)
		}
	}

	if g.Serverless {
		m.AzureOptions = AzureOptions{
			APIKey:     ExtractEnvVariable(g.APIKey),
			APIVersion: ExtractEnvVariable(g.Version),
		}
		if err := checkResolved(m.AzureOptions.APIKey, m.AzureOptions.APIVersion); err != nil {
			return nil, err
		}
		m.Auth = ServerlessAuth{
			APIKey:     m.AzureOptions.APIKey,
			APIVersion: m.AzureOptions.APIVersion,
		}
		return m, nil
	}

	if g.InstanceName == "" {
		return nil, errtypes.InvalidConfig(EndpointName,
			"group %q is missing an instance_name for non-serverless configuration", g.Name)
	}

	deploymentName := g.DeploymentName
	version := g.Version
	if d := g.Models[modelName]; d != nil {
		if d.DeploymentName != "" {
			deploymentName = d.DeploymentName
		}
		if d.Version != "" {
			version = d.Version
		}
	}
	if deploymentName == "" {
		return nil, errtypes.InvalidConfig(EndpointName,
			"model %q in group %q is missing a deployment_name", modelName, g.Name)
	}

	m.AzureOptions = AzureOptions{
		APIKey:         ExtractEnvVariable(g.APIKey),
		APIVersion:     ExtractEnvVariable(version),
		DeploymentName: ExtractEnvVariable(deploymentName),
		InstanceName:   ExtractEnvVariable(g.InstanceName),
	}
	o := &m.AzureOptions
	if err := checkResolved(o.APIKey, o.APIVersion, o.DeploymentName, o.InstanceName); err != nil {
		return nil, err
	}
	m.Auth = DeploymentAuth{Options: m.AzureOptions}
	return m, nil
}

func checkResolved(values ...string) error {
	for _, v := range values {
		if IsEnvReference(v) {
			return errtypes.InvalidConfig(EndpointName, "environment variable %q was not found", v)
		}
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`^\$\{(.+)\}$`)

// IsEnvReference returns true if the value is a `${VAR}` reference
func IsEnvReference(value string) bool {
	return envVarRegex.MatchString(value)
}

// ExtractEnvVariable returns the value of the environment variable
// referenced as `${VAR}`, or the value itself if it is not a reference
// or the variable is not set.
func ExtractEnvVariable(value string) string {
	match := envVarRegex.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return value
	}
	if v, ok := os.LookupEnv(match[1]); ok && v != "" {
		return v
	}
	return value
}

// ConstructURL substitutes `${INSTANCE_NAME}` and `${DEPLOYMENT_NAME}` placeholders
func ConstructURL(baseURL string, opts *AzureOptions) string {
	if opts == nil {
		opts = &AzureOptions{}
	}
	return strings.NewReplacer(
		"${INSTANCE_NAME}", opts.InstanceName,
		"${DEPLOYMENT_NAME}", opts.DeploymentName,
	).Replace(baseURL)
}

// ResolveHeaders substitutes user placeholders and environment variable references
// in header values. Supported placeholders:
// {{USER_ID}}, {{USER_EMAIL}}, {{USER_NAME}}, {{USER_USERNAME}}, {{USER_ROLE}}
func ResolveHeaders(headers map[string]string, user *userctx.User) map[string]string {
	if headers == nil {
		return nil
	}
	var r *strings.Replacer
	if user != nil {
		r = strings.NewReplacer(
			"{{USER_ID}}", user.ID,
			"{{USER_EMAIL}}", user.Email,
			"{{USER_NAME}}", user.Name,
			"{{USER_USERNAME}}", user.Username,
			"{{USER_ROLE}}", user.Role,
		)
	}

	resolved := make(map[string]string, len(headers))
	for k, v := range headers {
		v = ExtractEnvVariable(v)
		if r != nil {
			v = r.Replace(v)
		}
		resolved[k] = v
	}
	return resolved
}
