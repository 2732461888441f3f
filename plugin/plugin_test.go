package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"deckclip/config"
	"deckclip/model"
	"deckclip/store"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(t *testing.T) (*Plugin, string) {
	t.Helper()
	dir := t.TempDir()
	p := New(dir)
	p.OnLoad()
	return p, filepath.Join(dir, config.EntriesFile)
}

func TestOnLoad_SeedsDefaults(t *testing.T) {
	p, path := loaded(t)

	entries, err := p.GetEntries()
	require.NoError(t, err)
	assert.Equal(t, store.Defaults, entries)
	assert.FileExists(t, path)
}

func TestHandlers_BeforeLoad(t *testing.T) {
	p := New(t.TempDir())

	_, err := p.GetEntries()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = p.AddEntry("a", "b")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = p.UpdateEntry("1", "a", "b")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = p.DeleteEntry("1")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestCRUD(t *testing.T) {
	p, path := loaded(t)

	added, err := p.AddEntry("Mango", "MANGOHUD=1 %command%")
	require.NoError(t, err)
	assert.Equal(t, "4", added.ID)

	updated, err := p.UpdateEntry("4", "MangoHud", "MANGOHUD=1 %command%")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "MangoHud", updated.Name)

	missing, err := p.UpdateEntry("missing", "x", "y")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := p.DeleteEntry("1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.DeleteEntry("1")
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := p.GetEntries()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "4"}, ids(entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []model.Entry
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, entries, onDisk)
}

func TestLifecycle_NoOps(t *testing.T) {
	p, path := loaded(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	p.OnUnload()
	p.OnUninstall()

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NotNil(t, p.Store())
}

func ids(entries []model.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestOpen_Quiet(t *testing.T) {
	h := memory.New()
	log.SetHandler(h)
	t.Cleanup(func() { log.SetHandler(memory.New()) })

	p := New(t.TempDir())
	p.Open()
	entries, err := p.GetEntries()
	require.NoError(t, err)
	assert.Equal(t, store.Defaults, entries)

	for _, e := range h.Entries {
		assert.NotContains(t, e.Message, "plugin loaded")
	}

	p.OnLoad()
	require.NotEmpty(t, h.Entries)
	assert.Equal(t, "deckclip plugin loaded", h.Entries[len(h.Entries)-1].Message)
}
