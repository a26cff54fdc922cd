// Package assistantsapi provides the assistant files and vector store
// namespaces attached to the low-level OpenAI client.
package assistantsapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/azureconfig"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/keybroker", "assistantsapi")

// BetaHeaderValue is the value of the OpenAI-Beta header sent on every
// files and vector stores call
const BetaHeaderValue = "assistants=v1"

// ListLimit is the page size used for listing
const ListLimit = 100

// Client is the low-level OpenAI client with the assistant files
// and vector stores namespaces
type Client struct {
	openai.Client

	Files        *Files
	VectorStores *VectorStores
	// AzureOptions is set for clients of Azure deployments
	AzureOptions *azureconfig.AzureOptions
	// Model is the default model, for Azure it is the deployment name
	Model string
}

// New returns Client built with the provided options.
// A nil cache uses a process wide memory cache.
func New(cache AffinityCache, azureOptions *azureconfig.AzureOptions, opts ...option.RequestOption) *Client {
	c := &Client{
		Client:       openai.NewClient(opts...),
		AzureOptions: azureOptions,
	}
	if cache == nil {
		cache = defaultCache
	}
	c.Files = &Files{client: &c.Client}
	c.VectorStores = newVectorStores(&c.Client, cache)
	return c
}

// AsUpstreamError returns the upstream API error, if err is caused by
// a non-2xx response
func AsUpstreamError(err error) (*openai.Error, bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func withBeta(opts []option.RequestOption) []option.RequestOption {
	return append([]option.RequestOption{option.WithHeader(azureconfig.HeaderBeta, BetaHeaderValue)}, opts...)
}

func pathOf(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

func jsonBody(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}
	return b, nil
}

type listPage[T any] struct {
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
}

// listPages calls visit for each page until the last page,
// or until visit returns false.
func listPages[T any](
	ctx context.Context,
	client *openai.Client,
	path string,
	idOf func(*T) string,
	visit func([]T) bool,
	opts []option.RequestOption,
) error {
	after := ""
	for {
		reqOpts := append(withBeta(opts), option.WithQuery("limit", strconv.Itoa(ListLimit)))
		if after != "" {
			reqOpts = append(reqOpts, option.WithQuery("after", after))
		}

		var page listPage[T]
		if err := client.Get(ctx, path, nil, &page, reqOpts...); err != nil {
			return err
		}
		if !visit(page.Data) || !page.HasMore {
			return nil
		}

		next := page.LastID
		if next == "" && len(page.Data) > 0 {
			next = idOf(&page.Data[len(page.Data)-1])
		}
		if next == "" || next == after {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "no_cursor",
				"path", path)
			return nil
		}
		after = next
	}
}
