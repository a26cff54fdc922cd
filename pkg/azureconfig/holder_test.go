package azureconfig_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/effective-security/keybroker/pkg/azureconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reloadedConfig = `
assistants: true
groups:
  - group: westus
    api_key: sk-westus
    instance_name: west
    deployment_name: dep-west
    version: "2024-05-01-preview"
    assistants: true
    models:
      gpt-4o: {}
`

func Test_Holder(t *testing.T) {
	var h *azureconfig.Holder
	assert.Nil(t, h.Snapshot())

	h = azureconfig.NewHolder(nil)
	assert.Nil(t, h.Snapshot())

	s := loadSnapshot(t)
	h.Store(s)
	assert.Same(t, s, h.Snapshot())

	require.Error(t, h.Reload("testdata/invalid.yaml"))
	assert.Same(t, s, h.Snapshot(), "invalid config must not replace the snapshot")
}

func Test_Watch(t *testing.T) {
	s := loadSnapshot(t)
	h := azureconfig.NewHolder(s)

	dir := t.TempDir()
	file := filepath.Join(dir, "azure.yaml")
	require.NoError(t, os.WriteFile(file, []byte("groups: []\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.Watch(ctx, file))

	require.NoError(t, os.WriteFile(file, []byte(reloadedConfig), 0o600))

	assert.Eventually(t, func() bool {
		cur := h.Snapshot()
		return cur != nil && cur.DefaultAssistantModel() == "gpt-4o"
	}, 5*time.Second, 20*time.Millisecond)

	err := h.Watch(ctx, filepath.Join(dir, "missing", "azure.yaml"))
	require.Error(t, err)
}
