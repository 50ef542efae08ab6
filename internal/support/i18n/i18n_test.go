package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFallsBackToDefault(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "Commande introuvable", m.Translate("fr-FR", "error.order_not_found"))
	assert.Equal(t, "Order not found", m.Translate("en-US", "error.order_not_found"))
	assert.Equal(t, "Commande introuvable", m.Translate("de-DE", "error.order_not_found"))
	assert.Equal(t, "missing.key", m.Translate("en-US", "missing.key"))
}

func TestMatchNormalizesTags(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, "fr-FR", m.Match("fr"))
	assert.Equal(t, "en-US", m.Match("en"))
	assert.Equal(t, "fr-FR", m.Match("not a tag"))
	assert.ElementsMatch(t, []string{"en-US", "fr-FR"}, m.GetSupportedLanguages())
}

func TestLoadFromDirOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-US.json"), []byte(`{"error.order_not_found":"No such order"}`), 0o600))

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.LoadFromDir(dir))
	require.NoError(t, m.LoadFromDir(filepath.Join(dir, "absent")))

	assert.Equal(t, "No such order", m.Translate("en-US", "error.order_not_found"))
	assert.Equal(t, "Commande introuvable", m.Translate("fr-FR", "error.order_not_found"))
}
