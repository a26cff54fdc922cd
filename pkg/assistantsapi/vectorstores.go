package assistantsapi

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/metricskey"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/singleflight"
)

// VectorStores provides operations on the vector stores of assistants.
// The vector store of an assistant is found by its derived name,
// and cached in AffinityCache.
type VectorStores struct {
	Files *VectorStoreFiles

	client *openai.Client
	cache  AffinityCache
}

// flights collapses concurrent calls for an assistant within the process,
// for all clients sharing a cache
var flights singleflight.Group

func (s *VectorStores) flightKey(op, assistantID string) string {
	return fmt.Sprintf("%s/%p/%s", op, s.cache, assistantID)
}

// shared runs fn once for concurrent callers of the same key.
// fn runs detached from cancellation of the caller that started it,
// every caller waits for the result under its own ctx.
func (s *VectorStores) shared(
	ctx context.Context,
	op, assistantID string,
	fn func(ctx context.Context) (*VectorStore, error),
) (*VectorStore, error) {
	detached := context.WithoutCancel(ctx)
	ch := flights.DoChan(s.flightKey(op, assistantID), func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*VectorStore), nil
	}
}

func newVectorStores(client *openai.Client, cache AffinityCache) *VectorStores {
	return &VectorStores{
		Files:  &VectorStoreFiles{client: client},
		client: client,
		cache:  cache,
	}
}

// Name returns the vector store name of the assistant
func (s *VectorStores) Name(assistantID string) string {
	return assistantID + "_vector_store"
}

// List returns all vector stores
func (s *VectorStores) List(ctx context.Context, opts ...option.RequestOption) ([]VectorStore, error) {
	var list []VectorStore
	err := listPages(ctx, s.client, "vector_stores", storeID, func(data []VectorStore) bool {
		list = append(list, data...)
		return true
	}, opts)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Create returns the vector store of the assistant,
// the store is created only if it does not exist.
func (s *VectorStores) Create(ctx context.Context, assistantID string, opts ...option.RequestOption) (*VectorStore, error) {
	return s.shared(ctx, "create", assistantID, func(ctx context.Context) (*VectorStore, error) {
		existing, err := s.lookup(ctx, assistantID, opts)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}

		body, err := jsonBody(map[string]string{"name": s.Name(assistantID)})
		if err != nil {
			return nil, err
		}
		created := new(VectorStore)
		if err = s.client.Post(ctx, "vector_stores", body, created, withBeta(opts)...); err != nil {
			return nil, err
		}
		metricskey.StatsVectorStoresCreated.IncrCounter(1, s.cache.Name())
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "created",
			"assistant", assistantID,
			"vector_store", created.ID)

		if err = s.cache.Put(ctx, assistantID, created); err != nil {
			return nil, err
		}
		return created, nil
	})
}

// Retrieve returns the vector store of the assistant.
// If the store is not found by listing, it is requested by its name.
func (s *VectorStores) Retrieve(ctx context.Context, assistantID string, opts ...option.RequestOption) (*VectorStore, error) {
	existing, err := s.lookup(ctx, assistantID, opts)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	res := new(VectorStore)
	err = s.client.Get(ctx, pathOf("vector_stores", s.Name(assistantID)), nil, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete deletes the vector store of the assistant, and removes it from the cache
func (s *VectorStores) Delete(ctx context.Context, assistantID string, opts ...option.RequestOption) (*Deleted, error) {
	id := s.Name(assistantID)
	cached, ok, err := s.cache.Get(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	if ok && !cached.IsPlaceholder() {
		id = cached.ID
	}

	res := new(Deleted)
	if err = s.client.Delete(ctx, pathOf("vector_stores", id), nil, res, withBeta(opts)...); err != nil {
		return nil, err
	}
	if err = s.cache.Delete(ctx, assistantID); err != nil {
		return nil, err
	}
	return res, nil
}

// lookup returns the cached vector store of the assistant,
// or nil if the assistant has no vector store.
// On cache miss the vector stores are listed once per assistant,
// and the result or the placeholder is cached.
func (s *VectorStores) lookup(ctx context.Context, assistantID string, opts []option.RequestOption) (*VectorStore, error) {
	cached, ok, err := s.cache.Get(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	if ok {
		metricskey.StatsVectorStoreCacheHits.IncrCounter(1, s.cache.Name())
		if cached.IsPlaceholder() {
			return nil, nil
		}
		return cached, nil
	}
	metricskey.StatsVectorStoreCacheMisses.IncrCounter(1, s.cache.Name())

	vs, err := s.shared(ctx, "lookup", assistantID, func(ctx context.Context) (*VectorStore, error) {
		found, err := s.find(ctx, s.Name(assistantID), opts)
		if err != nil {
			return nil, err
		}
		if found == nil {
			found = &VectorStore{}
		}
		return s.cache.PutIfAbsent(ctx, assistantID, found)
	})
	if err != nil {
		return nil, err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "lookup",
		"assistant", assistantID,
		"found", !vs.IsPlaceholder())
	if vs.IsPlaceholder() {
		return nil, nil
	}
	return vs, nil
}

func (s *VectorStores) find(ctx context.Context, name string, opts []option.RequestOption) (*VectorStore, error) {
	var found *VectorStore
	err := listPages(ctx, s.client, "vector_stores", storeID, func(data []VectorStore) bool {
		for i := range data {
			if data[i].Name == name {
				found = &data[i]
				return false
			}
		}
		return true
	}, opts)
	if err != nil {
		return nil, err
	}
	return found, nil
}

func storeID(vs *VectorStore) string {
	return vs.ID
}

// VectorStoreFiles provides operations on the files of a vector store
type VectorStoreFiles struct {
	client *openai.Client
}

// Create adds the file to the vector store
func (f *VectorStoreFiles) Create(ctx context.Context, vectorStoreID, fileID string, opts ...option.RequestOption) (*VectorStoreFile, error) {
	body, err := jsonBody(map[string]string{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	res := new(VectorStoreFile)
	err = f.client.Post(ctx, pathOf("vector_stores", vectorStoreID, "files"), body, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// List returns all files of the vector store
func (f *VectorStoreFiles) List(ctx context.Context, vectorStoreID string, opts ...option.RequestOption) ([]VectorStoreFile, error) {
	var list []VectorStoreFile
	err := listPages(ctx, f.client, pathOf("vector_stores", vectorStoreID, "files"),
		func(vf *VectorStoreFile) string { return vf.ID },
		func(data []VectorStoreFile) bool {
			list = append(list, data...)
			return true
		}, opts)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Retrieve returns the vector store file
func (f *VectorStoreFiles) Retrieve(ctx context.Context, vectorStoreID, fileID string, opts ...option.RequestOption) (*VectorStoreFile, error) {
	res := new(VectorStoreFile)
	err := f.client.Get(ctx, pathOf("vector_stores", vectorStoreID, "files", fileID), nil, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes the file from the vector store
func (f *VectorStoreFiles) Delete(ctx context.Context, vectorStoreID, fileID string, opts ...option.RequestOption) (*Deleted, error) {
	res := new(Deleted)
	err := f.client.Delete(ctx, pathOf("vector_stores", vectorStoreID, "files", fileID), nil, res, withBeta(opts)...)
	if err != nil {
		return nil, err
	}
	return res, nil
}
