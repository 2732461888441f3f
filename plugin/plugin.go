// Package plugin is the surface the host plugin runtime talks to: three
// lifecycle hooks and the entry request handlers.
package plugin

import (
	"errors"
	"path/filepath"

	"deckclip/config"
	"deckclip/model"
	"deckclip/store"

	"github.com/apex/log"
)

// ErrNotLoaded is returned by handlers invoked before OnLoad.
var ErrNotLoaded = errors.New("plugin not loaded")

type Plugin struct {
	settingsDir string
	store       *store.Store
}

func New(settingsDir string) *Plugin {
	return &Plugin{settingsDir: settingsDir}
}

// OnLoad is the host's load hook: Open plus a lifecycle log line.
func (p *Plugin) OnLoad() {
	p.Open()
	log.WithField("entries", len(p.store.List())).Info("deckclip plugin loaded")
}

// Open loads the entries file in the settings directory without announcing
// a lifecycle event. One-shot commands use it.
func (p *Plugin) Open() {
	p.store = store.New(filepath.Join(p.settingsDir, config.EntriesFile))
}

func (p *Plugin) OnUnload() {
	log.Info("deckclip plugin unloaded")
}

func (p *Plugin) OnUninstall() {
	log.Info("deckclip plugin uninstalled")
}

// Store is nil until OnLoad has run.
func (p *Plugin) Store() *store.Store {
	return p.store
}

func (p *Plugin) GetEntries() ([]model.Entry, error) {
	if p.store == nil {
		return nil, ErrNotLoaded
	}
	return p.store.List(), nil
}

func (p *Plugin) AddEntry(name, command string) (model.Entry, error) {
	if p.store == nil {
		return model.Entry{}, ErrNotLoaded
	}
	e := p.store.Add(name, command)
	log.WithField("id", e.ID).Debug("entry added")
	return e, nil
}

// UpdateEntry returns nil when no entry has the given id.
func (p *Plugin) UpdateEntry(id, name, command string) (*model.Entry, error) {
	if p.store == nil {
		return nil, ErrNotLoaded
	}
	e, ok := p.store.Update(id, name, command)
	if !ok {
		log.WithField("id", id).Debug("update of unknown entry")
		return nil, nil
	}
	return &e, nil
}

func (p *Plugin) DeleteEntry(id string) (bool, error) {
	if p.store == nil {
		return false, ErrNotLoaded
	}
	return p.store.Delete(id), nil
}
