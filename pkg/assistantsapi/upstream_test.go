package assistantsapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/effective-security/keybroker/pkg/assistantsapi"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
)

// upstream is a fake of the vector stores and files API
type upstream struct {
	t        *testing.T
	pageSize int

	lock        sync.Mutex
	stores      []assistantsapi.VectorStore
	storeFiles  map[string][]assistantsapi.VectorStoreFile
	listCalls   int
	createCalls int
	seq         int
	// listGate, if set, holds list responses until closed
	listGate chan struct{}
}

func newUpstream(t *testing.T, pageSize int, names ...string) (*upstream, *httptest.Server) {
	u := &upstream{
		t:          t,
		pageSize:   pageSize,
		storeFiles: make(map[string][]assistantsapi.VectorStoreFile),
	}
	for _, name := range names {
		u.add(name)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /vector_stores", u.listStores)
	mux.HandleFunc("POST /vector_stores", u.createStore)
	mux.HandleFunc("GET /vector_stores/{id}", u.getStore)
	mux.HandleFunc("DELETE /vector_stores/{id}", u.deleteStore)
	mux.HandleFunc("GET /vector_stores/{id}/files", u.listFiles)
	mux.HandleFunc("POST /vector_stores/{id}/files", u.addFile)
	mux.HandleFunc("GET /vector_stores/{id}/files/{file}", u.getFile)
	mux.HandleFunc("DELETE /vector_stores/{id}/files/{file}", u.deleteFile)
	mux.HandleFunc("POST /assistants/{id}/files", u.attach)
	mux.HandleFunc("GET /assistants/{id}/files/{file}", u.attached)
	mux.HandleFunc("DELETE /assistants/{id}/files/{file}", u.detach)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, assistantsapi.BetaHeaderValue, r.Header.Get("OpenAI-Beta"), "%s %s", r.Method, r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return u, srv
}

func (u *upstream) client(cache assistantsapi.AffinityCache, srv *httptest.Server) *assistantsapi.Client {
	return assistantsapi.New(cache, nil,
		option.WithAPIKey("sk-test"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
}

func (u *upstream) calls() (list, create int) {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.listCalls, u.createCalls
}

func (u *upstream) add(name string) assistantsapi.VectorStore {
	u.seq++
	vs := assistantsapi.VectorStore{
		ID:     fmt.Sprintf("vs_%d", u.seq),
		Object: "vector_store",
		Name:   name,
		Status: "completed",
	}
	u.stores = append(u.stores, vs)
	return vs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf("No %s found", what),
			"type":    "invalid_request_error",
		},
	})
}

func paginate[T any](u *upstream, r *http.Request, items []T, idOf func(T) string) map[string]any {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	assert.Equal(u.t, assistantsapi.ListLimit, limit)
	size := min(limit, u.pageSize)

	start := 0
	if after := r.URL.Query().Get("after"); after != "" {
		for i, it := range items {
			if idOf(it) == after {
				start = i + 1
				break
			}
		}
	}
	end := min(start+size, len(items))
	page := items[start:end]

	res := map[string]any{
		"object":   "list",
		"data":     page,
		"has_more": end < len(items),
	}
	if len(page) > 0 {
		res["first_id"] = idOf(page[0])
		res["last_id"] = idOf(page[len(page)-1])
	}
	return res
}

// holdLists makes list calls wait until the returned func is called
func (u *upstream) holdLists() (release func()) {
	gate := make(chan struct{})
	u.lock.Lock()
	u.listGate = gate
	u.lock.Unlock()
	return func() { close(gate) }
}

func (u *upstream) listStores(w http.ResponseWriter, r *http.Request) {
	u.lock.Lock()
	u.listCalls++
	gate := u.listGate
	u.lock.Unlock()
	if gate != nil {
		<-gate
	}

	u.lock.Lock()
	defer u.lock.Unlock()
	writeJSON(w, http.StatusOK, paginate(u, r, u.stores, func(vs assistantsapi.VectorStore) string { return vs.ID }))
}

func (u *upstream) createStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	u.lock.Lock()
	defer u.lock.Unlock()
	u.createCalls++
	writeJSON(w, http.StatusOK, u.add(req.Name))
}

func (u *upstream) findStore(idOrName string) int {
	for i, vs := range u.stores {
		if vs.ID == idOrName || vs.Name == idOrName {
			return i
		}
	}
	return -1
}

func (u *upstream) getStore(w http.ResponseWriter, r *http.Request) {
	u.lock.Lock()
	defer u.lock.Unlock()
	i := u.findStore(r.PathValue("id"))
	if i < 0 {
		notFound(w, "vector store")
		return
	}
	writeJSON(w, http.StatusOK, u.stores[i])
}

func (u *upstream) deleteStore(w http.ResponseWriter, r *http.Request) {
	u.lock.Lock()
	defer u.lock.Unlock()
	i := u.findStore(r.PathValue("id"))
	if i < 0 {
		notFound(w, "vector store")
		return
	}
	id := u.stores[i].ID
	u.stores = append(u.stores[:i], u.stores[i+1:]...)
	writeJSON(w, http.StatusOK, assistantsapi.Deleted{ID: id, Object: "vector_store.deleted", Deleted: true})
}

func (u *upstream) listFiles(w http.ResponseWriter, r *http.Request) {
	u.lock.Lock()
	defer u.lock.Unlock()
	files := u.storeFiles[r.PathValue("id")]
	writeJSON(w, http.StatusOK, paginate(u, r, files, func(f assistantsapi.VectorStoreFile) string { return f.ID }))
}

func (u *upstream) addFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID string `json:"file_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	u.lock.Lock()
	defer u.lock.Unlock()
	id := r.PathValue("id")
	f := assistantsapi.VectorStoreFile{
		ID:            req.FileID,
		Object:        "vector_store.file",
		VectorStoreID: id,
		Status:        "in_progress",
	}
	u.storeFiles[id] = append(u.storeFiles[id], f)
	writeJSON(w, http.StatusOK, f)
}

func (u *upstream) getFile(w http.ResponseWriter, r *http.Request) {
	u.lock.Lock()
	defer u.lock.Unlock()
	for _, f := range u.storeFiles[r.PathValue("id")] {
		if f.ID == r.PathValue("file") {
			writeJSON(w, http.StatusOK, f)
			return
		}
	}
	notFound(w, "file")
}

func (u *upstream) deleteFile(w http.ResponseWriter, r *http.Request) {
	u.lock.Lock()
	defer u.lock.Unlock()
	id := r.PathValue("id")
	files := u.storeFiles[id]
	for i, f := range files {
		if f.ID == r.PathValue("file") {
			u.storeFiles[id] = append(files[:i], files[i+1:]...)
			writeJSON(w, http.StatusOK, assistantsapi.Deleted{ID: f.ID, Object: "vector_store.file.deleted", Deleted: true})
			return
		}
	}
	notFound(w, "file")
}

func (u *upstream) attach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID string `json:"file_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, http.StatusOK, assistantsapi.AssistantFile{
		ID:          req.FileID,
		Object:      "assistant.file",
		AssistantID: r.PathValue("id"),
	})
}

func (u *upstream) attached(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assistantsapi.AssistantFile{
		ID:          r.PathValue("file"),
		Object:      "assistant.file",
		AssistantID: r.PathValue("id"),
	})
}

func (u *upstream) detach(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assistantsapi.Deleted{
		ID:      r.PathValue("file"),
		Object:  "assistant.file.deleted",
		Deleted: true,
	})
}
