// Package initializer resolves the credentials of an assistants endpoint
// and builds the upstream clients for a request.
package initializer

import (
	"context"
	"io"
	"maps"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/appclient"
	"github.com/effective-security/keybroker/pkg/assistantsapi"
	"github.com/effective-security/keybroker/pkg/azureconfig"
	"github.com/effective-security/keybroker/pkg/config"
	"github.com/effective-security/keybroker/pkg/credentials"
	"github.com/effective-security/keybroker/pkg/errtypes"
	"github.com/effective-security/keybroker/pkg/metricskey"
	"github.com/effective-security/keybroker/pkg/transport"
	"github.com/effective-security/keybroker/pkg/userctx"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/keybroker", "initializer")

// Request to initialize the clients
type Request struct {
	// Endpoint is the name of the endpoint: azureAssistants|assistants
	Endpoint string
	// Model is the model requested in the body or query
	Model string
	// Version of the assistants API, sent as `OpenAI-Beta: assistants=<version>`
	Version string
	// EndpointOption provides the request options for the application client
	EndpointOption *appclient.EndpointOption
	// InitAppClient specifies to build the application client
	InitAppClient bool
}

// Settings are the resolved settings of the low-level client
type Settings struct {
	BaseURL      string
	Headers      map[string]string
	DefaultQuery map[string]string
	Model        string
	Group        string
	Serverless   bool
	KeySource    credentials.CredentialSource
	URLSource    credentials.CredentialSource
}

// Result of the initialization
type Result struct {
	// OpenAI is the low-level client with the files and vector stores namespaces
	OpenAI *assistantsapi.Client
	// Client is the application client, if requested
	Client *appclient.Client
	// APIKey is the resolved API key
	APIKey   string
	Settings Settings
}

// Initializer builds the clients of the assistants endpoints
type Initializer struct {
	cfg      *config.Config
	azure    *azureconfig.Holder
	resolver *credentials.Resolver
	cache    assistantsapi.AffinityCache
	// closers are released by Close
	closers []io.Closer
}

// New returns Initializer.
// The store provides the keys of the users for the endpoints configured as `user_provided`.
func New(cfg *config.Config, azure *azureconfig.Holder, store credentials.KeyStore, cache assistantsapi.AffinityCache) *Initializer {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if azure == nil {
		azure = azureconfig.NewHolder(nil)
	}
	if cache == nil {
		cache = assistantsapi.NewMemoryCache()
	}
	return &Initializer{
		cfg:      cfg,
		azure:    azure,
		resolver: credentials.NewResolver(store),
		cache:    cache,
	}
}

// WithClock sets the time source for the user key expiry checks
func (i *Initializer) WithClock(now func() time.Time) *Initializer {
	i.resolver.WithClock(now)
	return i
}

// Close releases the connections opened by Bootstrap
func (i *Initializer) Close() error {
	var errs []error
	for _, c := range i.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return errors.Join(errs...)
}

// InitializeClient returns the clients for the request.
// The user of the request is taken from the context.
func (i *Initializer) InitializeClient(ctx context.Context, req *Request) (*Result, error) {
	started := time.Now()
	defer metricskey.PerfInitializeClient.MeasureSince(started, req.Endpoint)

	var routing azureconfig.Routing
	switch req.Endpoint {
	case config.EndpointAzureAssistants:
		routing = azureconfig.RoutingFor(i.azure.Snapshot())
	case config.EndpointAssistants:
		routing = azureconfig.Ungrouped{}
	default:
		return nil, errtypes.InvalidConfig(req.Endpoint, "unsupported endpoint %q", req.Endpoint)
	}

	ep := i.cfg.Endpoint(req.Endpoint)
	user := userctx.GetUser(ctx)

	resolved, err := i.resolver.Resolve(ctx, userctx.UserID(ctx), ep)
	if err != nil {
		return nil, err
	}

	apiKey := resolved.APIKey
	settings := Settings{
		BaseURL:   resolved.BaseURL,
		KeySource: resolved.KeySource,
		URLSource: resolved.URLSource,
	}
	clientOpts := &appclient.Options{
		ReverseProxyURL: resolved.BaseURL,
		Proxy:           i.cfg.Proxy,
		Organization:    i.cfg.Organization,
		MaxRetries:      i.cfg.MaxRetries,
	}
	if req.EndpointOption != nil {
		clientOpts.EndpointOption = *req.EndpointOption
	}

	var azureOptions *azureconfig.AzureOptions
	if grouped, ok := routing.(azureconfig.Grouped); ok {
		s := grouped.Snapshot
		modelName := values.StringsCoalesce(req.Model, s.DefaultAssistantModel())
		m, err := azureconfig.MapModel(modelName, s)
		if err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "map_model",
				"endpoint", req.Endpoint,
				"model", modelName,
				"err", err.Error())
			return nil, err
		}

		opts := m.AzureOptions
		azureOptions = &opts
		apiKey = opts.APIKey

		settings.BaseURL = m.URL()
		settings.Group = m.GroupName
		settings.Serverless = m.Serverless()
		if opts.APIVersion != "" {
			settings.DefaultQuery = map[string]string{"api-version": opts.APIVersion}
		}
		settings.Headers = m.ComposeHeaders(req.Version, user)
		settings.Model = opts.DeploymentName

		if req.InitAppClient {
			clientOpts.TitleConvo = s.TitleConvo
			clientOpts.TitleModel = s.TitleModel
			clientOpts.TitleMethod = values.StringsCoalesce(s.TitleMethod, azureconfig.TitleMethodCompletion)
			clientOpts.AddParams = m.Group.AddParams
			clientOpts.DropParams = m.Group.DropParams
			clientOpts.ForcePrompt = m.Group.ForcePrompt
			clientOpts.ReverseProxyURL = values.StringsCoalesce(settings.BaseURL, clientOpts.ReverseProxyURL)
			clientOpts.Headers = maps.Clone(settings.Headers)

			switch auth := m.Auth.(type) {
			case azureconfig.DeploymentAuth:
				clientOpts.Azure = &auth.Options
			case azureconfig.ServerlessAuth:
				if auth.APIVersion != "" {
					clientOpts.DefaultQuery = map[string]string{"api-version": auth.APIVersion}
				}
				clientOpts.Headers[azureconfig.HeaderAPIKey] = auth.APIKey
			}
		}
	}

	if ep.UserProvidesKey() && apiKey == "" {
		return nil, errtypes.NoUserKey(req.Endpoint)
	}
	if apiKey == "" {
		return nil, errtypes.MissingAPIKey(req.Endpoint)
	}

	httpClient, err := transport.NewHTTPClient(i.cfg.Proxy)
	if err != nil {
		return nil, err
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(i.cfg.MaxRetries),
	}
	if settings.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(settings.BaseURL))
	}
	if i.cfg.Organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(i.cfg.Organization))
	}
	for _, k := range sortedKeys(settings.Headers) {
		reqOpts = append(reqOpts, option.WithHeader(k, settings.Headers[k]))
	}
	for _, k := range sortedKeys(settings.DefaultQuery) {
		reqOpts = append(reqOpts, option.WithQuery(k, settings.DefaultQuery[k]))
	}

	oa := assistantsapi.New(i.cache, azureOptions, reqOpts...)
	oa.Model = settings.Model

	res := &Result{
		OpenAI:   oa,
		APIKey:   apiKey,
		Settings: settings,
	}

	if req.InitAppClient && req.EndpointOption != nil {
		res.Client, err = appclient.New(apiKey, clientOpts, httpClient)
		if err != nil {
			return nil, err
		}
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "initialized",
		"endpoint", req.Endpoint,
		"group", settings.Group,
		"serverless", settings.Serverless,
		"key_source", settings.KeySource.String(),
		"app_client", res.Client != nil)

	return res, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
