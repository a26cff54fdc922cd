package appclient

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/sjson"
)

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

// PatchBody sets addParams and then removes dropParams in JSON body
func PatchBody(body []byte, addParams map[string]any, dropParams []string) ([]byte, error) {
	keys := make([]string, 0, len(addParams))
	for k := range addParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var err error
	for _, k := range keys {
		body, err = sjson.SetBytes(body, pathEscaper.Replace(k), addParams[k])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to set %q parameter", k)
		}
	}
	for _, k := range dropParams {
		body, err = sjson.DeleteBytes(body, pathEscaper.Replace(k))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to drop %q parameter", k)
		}
	}
	return body, nil
}

// ParamPatcher returns middleware that patches JSON bodies of POST requests
func ParamPatcher(addParams map[string]any, dropParams []string) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		if req.Method != http.MethodPost || req.Body == nil ||
			!strings.HasPrefix(req.Header.Get("Content-Type"), "application/json") {
			return next(req)
		}

		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
		body, err = PatchBody(body, addParams, dropParams)
		if err != nil {
			return nil, err
		}

		req.Body = io.NopCloser(bytes.NewReader(body))
		req.ContentLength = int64(len(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		return next(req)
	}
}
