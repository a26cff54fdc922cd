package azureconfig

import (
	"maps"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

// Title generation methods
const (
	TitleMethodCompletion = "completion"
	TitleMethodStructured = "structured"
)

// Config is the Azure OpenAI endpoint configuration
type Config struct {
	// Assistants enables grouped routing for the Azure assistants endpoint
	Assistants bool `json:"assistants,omitempty" yaml:"assistants,omitempty"`
	// TitleConvo enables conversation titles generation
	TitleConvo bool `json:"title_convo,omitempty" yaml:"title_convo,omitempty"`
	// TitleModel specifies the model used to generate titles
	TitleModel string `json:"title_model,omitempty" yaml:"title_model,omitempty"`
	// TitleMethod specifies how titles are generated: completion|structured
	TitleMethod string `json:"title_method,omitempty" yaml:"title_method,omitempty" validate:"omitempty,oneof=completion structured"`
	// Groups specifies the deployment groups
	Groups []*Group `json:"groups" yaml:"groups" validate:"required,min=1,dive,required"`
}

// Group is a named cluster of deployments sharing base URL, headers and parameter policy
type Group struct {
	Name           string `json:"group" yaml:"group" validate:"required"`
	APIKey         string `json:"api_key" yaml:"api_key" validate:"required"`
	InstanceName   string `json:"instance_name,omitempty" yaml:"instance_name,omitempty"`
	DeploymentName string `json:"deployment_name,omitempty" yaml:"deployment_name,omitempty"`
	Version        string `json:"version,omitempty" yaml:"version,omitempty"`
	BaseURL        string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Serverless groups use header based API key auth
	Serverless bool `json:"serverless,omitempty" yaml:"serverless,omitempty"`
	// Assistants specifies that the group models are available to assistants
	Assistants bool `json:"assistants,omitempty" yaml:"assistants,omitempty"`

	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	AddParams   map[string]any    `json:"add_params,omitempty" yaml:"add_params,omitempty"`
	DropParams  []string          `json:"drop_params,omitempty" yaml:"drop_params,omitempty"`
	ForcePrompt bool              `json:"force_prompt,omitempty" yaml:"force_prompt,omitempty"`

	// Models maps model name to the deployment details,
	// an empty value uses the group deployment and version.
	Models map[string]*ModelDetails `json:"models" yaml:"models" validate:"required,min=1"`
}

// ModelDetails overrides group deployment for a model
type ModelDetails struct {
	DeploymentName string `json:"deployment_name,omitempty" yaml:"deployment_name,omitempty"`
	Version        string `json:"version,omitempty" yaml:"version,omitempty"`
}

// ModelGroup is the group of a model
type ModelGroup struct {
	Group string
}

// Snapshot is immutable compiled configuration
type Snapshot struct {
	ModelGroupMap map[string]ModelGroup
	GroupMap      map[string]*Group
	// AssistantModels lists models of the assistant groups,
	// the first one is the default model
	AssistantModels []string

	Assistants  bool
	TitleConvo  bool
	TitleModel  string
	TitleMethod string
}

// LoadConfig from YAML or JSON file.
// Values are not expanded on load: `${VAR}` references and URL placeholders
// are resolved by MapModel.
func LoadConfig(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg := new(Config)
	if err = yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to parse %s", file)
	}
	return cfg, nil
}

// Load returns compiled Snapshot from file
func Load(file string) (*Snapshot, error) {
	cfg, err := LoadConfig(file)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

var validate = validator.New()

// Build validates the configuration and returns Snapshot
func (c *Config) Build() (*Snapshot, error) {
	if err := validate.Struct(c); err != nil {
		return nil, errors.Wrap(err, "invalid azure configuration")
	}

	s := &Snapshot{
		ModelGroupMap: make(map[string]ModelGroup),
		GroupMap:      make(map[string]*Group),
		Assistants:    c.Assistants,
		TitleConvo:    c.TitleConvo,
		TitleModel:    c.TitleModel,
		TitleMethod:   c.TitleMethod,
	}
	if s.TitleMethod == "" {
		s.TitleMethod = TitleMethodCompletion
	}

	for _, g := range c.Groups {
		if _, ok := s.GroupMap[g.Name]; ok {
			return nil, errors.Errorf("duplicate group %q", g.Name)
		}
		if !g.Serverless && g.InstanceName == "" {
			return nil, errors.Errorf("group %q is missing an instance_name for non-serverless configuration", g.Name)
		}
		if g.Serverless && g.BaseURL == "" {
			return nil, errors.Errorf("group %q is missing a base_url for serverless configuration", g.Name)
		}
		s.GroupMap[g.Name] = g

		for _, model := range slices.Sorted(maps.Keys(g.Models)) {
			if mg, ok := s.ModelGroupMap[model]; ok {
				return nil, errors.Errorf("model %q in group %q is already defined in group %q", model, g.Name, mg.Group)
			}
			s.ModelGroupMap[model] = ModelGroup{Group: g.Name}
			if g.Assistants {
				s.AssistantModels = append(s.AssistantModels, model)
			}
		}
	}

	if s.Assistants && len(s.AssistantModels) == 0 {
		return nil, errors.New("assistants are enabled, but no group is marked for assistants")
	}
	return s, nil
}

// DefaultAssistantModel returns the first assistant model
func (s *Snapshot) DefaultAssistantModel() string {
	if len(s.AssistantModels) == 0 {
		return ""
	}
	return s.AssistantModels[0]
}
