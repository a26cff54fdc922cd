package credentials

import (
	"context"
	"sync"

	"github.com/effective-security/keybroker/pkg/errtypes"
)

type inMemory struct {
	mu      sync.RWMutex
	sealer  Sealer
	storage map[memoryKey]*sealedKey
}

// NewMemoryStore returns in-memory Store
func NewMemoryStore(sealer Sealer) Store {
	return &inMemory{
		sealer: sealer,
	}
}

type memoryKey struct {
	userID   string
	endpoint string
}

func (m *inMemory) get(userID, endpoint string) *sealedKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[memoryKey{userID, endpoint}]
}

func (m *inMemory) GetUserKeyExpiry(_ context.Context, userID, endpoint string) (*KeyExpiry, error) {
	sk := m.get(userID, endpoint)
	if sk == nil {
		return nil, nil
	}
	return &KeyExpiry{ExpiresAt: sk.ExpiresAt}, nil
}

func (m *inMemory) GetUserKeyValues(_ context.Context, userID, endpoint string) (*UserKeyValues, error) {
	sk := m.get(userID, endpoint)
	if sk == nil {
		return nil, errtypes.NoUserKey(endpoint)
	}
	return open(m.sealer, userID, endpoint, sk)
}

func (m *inMemory) UpdateUserKey(_ context.Context, rec *UserKeyRecord) error {
	sk, err := seal(m.sealer, rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[memoryKey]*sealedKey)
	}
	m.storage[memoryKey{rec.UserID, rec.Endpoint}] = sk
	return nil
}

func (m *inMemory) DeleteUserKey(_ context.Context, userID, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, memoryKey{userID, endpoint})
	}
	return nil
}
