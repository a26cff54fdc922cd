package appclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/effective-security/keybroker/pkg/appclient"
	"github.com/effective-security/keybroker/pkg/azureconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   map[string]any
}

type fakeLLM struct {
	lock     sync.Mutex
	requests []captured
	content  string
	status   int
}

func newFakeLLM(t *testing.T, content string) (*fakeLLM, *httptest.Server) {
	f := &fakeLLM{content: content, status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeLLM) serve(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	c := captured{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  map[string]string{},
		Header: r.Header.Clone(),
	}
	for k := range r.URL.Query() {
		c.Query[k] = r.URL.Query().Get(k)
	}
	_ = json.Unmarshal(b, &c.Body)

	f.lock.Lock()
	f.requests = append(f.requests, c)
	status := f.status
	f.lock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = io.WriteString(w, `{"error":{"message":"upstream failed","type":"server_error"}}`)
		return
	}

	var res any
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		res = map[string]any{
			"id":      "cmpl-1",
			"object":  "text_completion",
			"created": 1,
			"model":   c.Body["model"],
			"choices": []any{map[string]any{"index": 0, "text": f.content, "finish_reason": "stop"}},
		}
	} else {
		res = map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   c.Body["model"],
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": f.content},
			}},
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (f *fakeLLM) last(t *testing.T) captured {
	f.lock.Lock()
	defer f.lock.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeLLM) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.requests)
}

func Test_TitleConversation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, srv := newFakeLLM(t, ` "Weather in Paris" `)

	c, err := appclient.New("sk-test", &appclient.Options{
		ReverseProxyURL: srv.URL,
		Organization:    "org-1",
		Headers:         map[string]string{"X-Custom": "v1"},
		DefaultQuery:    map[string]string{"tenant": "t1"},
		EndpointOption: appclient.EndpointOption{
			ModelOptions: map[string]any{"model": "gpt-4o"},
		},
		TitleConvo: true,
		AddParams:  map[string]any{"temperature": 0.2, "user": "u1"},
		DropParams: []string{"user"},
	}, srv.Client())
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL)
	assert.Equal(t, "sk-test", c.APIKey)

	title, err := c.TitleConversation(ctx, "What is the weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, "Weather in Paris", title)

	req := f.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "org-1", req.Header.Get("OpenAI-Organization"))
	assert.Equal(t, "v1", req.Header.Get("X-Custom"))
	assert.Equal(t, "t1", req.Query["tenant"])
	assert.Equal(t, "gpt-4o", req.Body["model"])
	assert.Equal(t, 0.2, req.Body["temperature"])
	assert.NotContains(t, req.Body, "user")
}

func Test_TitleConversation_Disabled(t *testing.T) {
	t.Parallel()
	f, srv := newFakeLLM(t, "unused")
	c, err := appclient.New("sk-test", &appclient.Options{ReverseProxyURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	title, err := c.TitleConversation(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Equal(t, 0, f.count())
}

func Test_TitleConversation_Structured(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, srv := newFakeLLM(t, "```json\n{\"title\": \"Trip Planning\"}\n```")

	c, err := appclient.New("sk-test", &appclient.Options{
		ReverseProxyURL: srv.URL,
		TitleConvo:      true,
		TitleModel:      "gpt-4o-mini",
		TitleMethod:     azureconfig.TitleMethodStructured,
	}, srv.Client())
	require.NoError(t, err)

	title, err := c.TitleConversation(ctx, "Plan a trip")
	require.NoError(t, err)
	assert.Equal(t, "Trip Planning", title)
	assert.Equal(t, "gpt-4o-mini", f.last(t).Body["model"])
}

func Test_TitleConversation_ForcePrompt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, srv := newFakeLLM(t, " Hello World\n")

	c, err := appclient.New("sk-test", &appclient.Options{
		ReverseProxyURL: srv.URL,
		TitleConvo:      true,
		ForcePrompt:     true,
	}, srv.Client())
	require.NoError(t, err)

	title, err := c.TitleConversation(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", title)

	req := f.last(t)
	assert.Equal(t, "/completions", req.Path)
	assert.Equal(t, appclient.DefaultTitleModel, req.Body["model"])
	assert.Contains(t, req.Body["prompt"], "hi")
}

func Test_TitleConversation_Azure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, srv := newFakeLLM(t, "Azure Title")

	c, err := appclient.New("az-key", &appclient.Options{
		ReverseProxyURL: srv.URL + "/openai",
		TitleConvo:      true,
		Azure: &azureconfig.AzureOptions{
			APIKey:         "az-key",
			APIVersion:     "2024-02-15-preview",
			DeploymentName: "dep1",
			InstanceName:   "acct",
		},
	}, srv.Client())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/openai/deployments/dep1", c.BaseURL)

	title, err := c.TitleConversation(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Azure Title", title)

	req := f.last(t)
	assert.Equal(t, "/openai/deployments/dep1/chat/completions", req.Path)
	assert.Equal(t, "2024-02-15-preview", req.Query["api-version"])
	assert.Equal(t, "az-key", req.Header.Get("api-key"))
	assert.Equal(t, "dep1", req.Body["model"])
}

func Test_TitleConversation_Error(t *testing.T) {
	t.Parallel()
	f, srv := newFakeLLM(t, "")
	f.status = http.StatusBadRequest

	c, err := appclient.New("sk-test", &appclient.Options{
		ReverseProxyURL: srv.URL,
		TitleConvo:      true,
	}, srv.Client())
	require.NoError(t, err)

	_, err = c.TitleConversation(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, 1, f.count())
}

func Test_New_Proxy(t *testing.T) {
	t.Parallel()
	_, err := appclient.New("sk", &appclient.Options{Proxy: "ftp://127.0.0.1:21"}, nil)
	require.Error(t, err)

	c, err := appclient.New("sk", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, c.BaseURL)
}

func Test_AzureBaseURL(t *testing.T) {
	t.Parallel()
	opts := &azureconfig.AzureOptions{InstanceName: "acct", DeploymentName: "dep1"}
	assert.Equal(t, "https://acct.openai.azure.com/openai/deployments/dep1", appclient.AzureBaseURL("", opts))
	assert.Equal(t, "https://proxy/openai/deployments/dep1", appclient.AzureBaseURL("https://proxy/openai/", opts))
	assert.Equal(t, "https://proxy/openai/deployments/custom", appclient.AzureBaseURL("https://proxy/openai/deployments/custom", opts))
	assert.Equal(t, "https://proxy/openai", appclient.AzureBaseURL("https://proxy/openai", &azureconfig.AzureOptions{}))
}
