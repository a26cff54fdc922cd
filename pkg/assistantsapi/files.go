package assistantsapi

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Files provides operations on files attached to an assistant
type Files struct {
	client *openai.Client
}

// Create attaches the file to the assistant
func (f *Files) Create(ctx context.Context, assistantID, fileID string, opts ...option.RequestOption) (*AssistantFile, error) {
	body, err := jsonBody(map[string]string{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	res := new(AssistantFile)
	err = f.client.Post(ctx, pathOf("assistants", assistantID, "files"), body, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Retrieve returns the assistant file
func (f *Files) Retrieve(ctx context.Context, assistantID, fileID string, opts ...option.RequestOption) (*AssistantFile, error) {
	res := new(AssistantFile)
	err := f.client.Get(ctx, pathOf("assistants", assistantID, "files", fileID), nil, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete detaches the file from the assistant
func (f *Files) Delete(ctx context.Context, assistantID, fileID string, opts ...option.RequestOption) (*Deleted, error) {
	res := new(Deleted)
	err := f.client.Delete(ctx, pathOf("assistants", assistantID, "files", fileID), nil, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}
