// Package appclient provides the application level conversational client
// of the assistants endpoints.
package appclient

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/azureconfig"
	"github.com/effective-security/keybroker/pkg/transport"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/keybroker", "appclient")

// ErrEmptyResponse is returned when the upstream returns no choices
var ErrEmptyResponse = errors.New("empty response")

// Client is the application level client
type Client struct {
	openai.Client

	// APIKey used by the client
	APIKey        string
	ClientOptions Options
	// BaseURL is the upstream URL
	BaseURL string
}

// New returns Client.
// If httpClient is nil, the client for opts.Proxy is used.
func New(apiKey string, opts *Options, httpClient *http.Client) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	if httpClient == nil {
		var err error
		httpClient, err = transport.NewHTTPClient(opts.Proxy)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		APIKey:        apiKey,
		ClientOptions: *opts,
	}

	reqOpts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(opts.MaxRetries),
	}

	if opts.Azure != nil {
		c.BaseURL = AzureBaseURL(opts.ReverseProxyURL, opts.Azure)
		// Azure deployments authenticate with api-key header
		reqOpts = append(reqOpts,
			option.WithHeaderDel("Authorization"),
			option.WithHeader(azureconfig.HeaderAPIKey, apiKey),
		)
		if opts.Azure.APIVersion != "" {
			reqOpts = append(reqOpts, option.WithQuery("api-version", opts.Azure.APIVersion))
		}
	} else {
		c.BaseURL = opts.ReverseProxyURL
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if c.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.BaseURL))
	}
	if opts.Organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(opts.Organization))
	}

	for _, k := range sortedKeys(opts.Headers) {
		reqOpts = append(reqOpts, option.WithHeader(k, opts.Headers[k]))
	}
	for _, k := range sortedKeys(opts.DefaultQuery) {
		reqOpts = append(reqOpts, option.WithQuery(k, opts.DefaultQuery[k]))
	}
	if len(opts.AddParams) > 0 || len(opts.DropParams) > 0 {
		reqOpts = append(reqOpts, option.WithMiddleware(ParamPatcher(opts.AddParams, opts.DropParams)))
	}

	c.Client = openai.NewClient(reqOpts...)
	return c, nil
}

// AzureBaseURL returns the deployment URL.
// The base URL is extended with `/deployments/<deployment>` if it
// does not address a deployment.
func AzureBaseURL(baseURL string, azure *azureconfig.AzureOptions) string {
	if baseURL == "" {
		baseURL = azureconfig.ConstructURL(azureconfig.DefaultBaseURL, azure)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.Contains(baseURL, "/deployments/") || azure.DeploymentName == "" {
		return baseURL
	}
	return fmt.Sprintf("%s/deployments/%s", baseURL, azure.DeploymentName)
}

// Title generation prompts
const (
	titleInstruction = "Write a concise title for this conversation in 5 words or less. " +
		"Do not use quotes or punctuation."
	titleStructuredInstruction = "Write a concise title for this conversation in 5 words or less. " +
		`Reply with JSON object only: {"title": "<title>"}`
)

// TitleConversation returns the title for the conversation.
// Empty title is returned if titles are not enabled.
func (c *Client) TitleConversation(ctx context.Context, text string) (string, error) {
	if !c.ClientOptions.TitleConvo {
		return "", nil
	}

	model := c.titleModel()
	var (
		title string
		err   error
	)
	switch {
	case c.ClientOptions.ForcePrompt:
		title, err = c.complete(ctx, model, fmt.Sprintf("%s\n\nConversation:\n%s\n\nTitle:", titleInstruction, text))
	case c.ClientOptions.TitleMethod == azureconfig.TitleMethodStructured:
		title, err = c.chat(ctx, model, titleStructuredInstruction, text)
		if err == nil {
			title = parseStructuredTitle(title)
		}
	default:
		title, err = c.chat(ctx, model, titleInstruction, text)
	}
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "title",
			"model", model,
			"err", err.Error())
		return "", err
	}
	return cleanTitle(title), nil
}

func (c *Client) titleModel() string {
	o := &c.ClientOptions
	switch {
	case o.TitleModel != "":
		return o.TitleModel
	case o.Azure != nil && o.Azure.DeploymentName != "":
		return o.Azure.DeploymentName
	case o.Model() != "":
		return o.Model()
	}
	return DefaultTitleModel
}

func (c *Client) chat(ctx context.Context, model, instruction, text string) (string, error) {
	resp, err := c.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Text, nil
}

func parseStructuredTitle(content string) string {
	content = strings.TrimSpace(content)
	// models may wrap JSON in a code block
	if i := strings.Index(content, "{"); i >= 0 {
		if j := strings.LastIndex(content, "}"); j > i {
			content = content[i : j+1]
		}
	}
	if gjson.Valid(content) {
		if t := gjson.Get(content, "title"); t.Exists() {
			return t.String()
		}
	}
	return content
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	return strings.TrimSpace(strings.TrimPrefix(title, "Title:"))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
