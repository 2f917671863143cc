package codes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Registry holds code configurations keyed by identity. It is safe for
// concurrent use; YAML overrides can be hot-reloaded while documents are
// being processed.
type Registry struct {
	mu       sync.RWMutex
	configs  map[Identity]*CodeConfig
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, cfg *CodeConfig)
	onError  func(err error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[Identity]*CodeConfig),
	}
}

// NewDefaultRegistry creates a registry populated with Defaults.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.registerDefaults()
	return r
}

// NewRegistryWithDirectory creates a default registry and applies the YAML
// overrides found in dir.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewDefaultRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) registerDefaults() {
	for _, cfg := range Defaults() {
		if err := r.Register(cfg); err != nil {
			panic(fmt.Sprintf("invalid built-in code %q: %v", cfg.Identity, err))
		}
	}
}

// Register adds or replaces the configuration for cfg.Identity.
func (r *Registry) Register(cfg *CodeConfig) error {
	if cfg == nil {
		return fmt.Errorf("code config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid code config: %w", err)
	}

	stored := cfg.clone()
	for i, key := range stored.DetectionKeys {
		stored.DetectionKeys[i] = strings.ToLower(strings.TrimSpace(key))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[stored.Identity] = stored
	return nil
}

// Unregister removes a code from the registry.
func (r *Registry) Unregister(id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[id]; !ok {
		return fmt.Errorf("code %q not found", id)
	}
	delete(r.configs, id)
	return nil
}

// Get returns a copy of the configuration for id.
func (r *Registry) Get(id Identity) (*CodeConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	if !ok {
		return nil, false
	}
	return cfg.clone(), true
}

// List returns copies of all configurations ordered by identity.
func (r *Registry) List() []*CodeConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]*CodeConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		configs = append(configs, cfg.clone())
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Identity < configs[j].Identity
	})
	return configs
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.configs)
}

// Detect attributes a source file to a code. A file named after a lex.uz
// document id matches that code directly; otherwise the longest detection key
// contained in the lowercased base name wins, so "criminal executive" beats
// "criminal". It returns an *UnknownCodeError when nothing matches.
func (r *Registry) Detect(sourcePath string) (*CodeConfig, error) {
	base := strings.ToLower(filepath.Base(sourcePath))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    *CodeConfig
		bestLen int
	)
	for _, cfg := range r.sortedLocked() {
		for _, id := range cfg.DocumentIDs {
			if stem == id {
				return cfg.clone(), nil
			}
		}
		for _, key := range cfg.DetectionKeys {
			if key != "" && len(key) > bestLen && strings.Contains(base, key) {
				best, bestLen = cfg, len(key)
			}
		}
	}

	if best == nil {
		return nil, &UnknownCodeError{Source: sourcePath}
	}
	return best.clone(), nil
}

// sortedLocked returns configs ordered by identity so detection ties are
// resolved deterministically. Callers must hold r.mu.
func (r *Registry) sortedLocked() []*CodeConfig {
	configs := make([]*CodeConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Identity < configs[j].Identity
	})
	return configs
}

// LoadDirectory applies every YAML file in dir. A missing directory is not
// an error.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading codes: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile registers the code configuration in a YAML file. Fields missing
// from the file are taken from the built-in default for the same identity,
// so an override may be as small as:
//
//	identity: criminal
//	max_article: 300
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var header struct {
		Identity Identity `yaml:"identity"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	cfg := &CodeConfig{}
	if base := defaultFor(header.Identity); base != nil {
		cfg = base
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	if err := r.Register(cfg); err != nil {
		return fmt.Errorf("registering code: %w", err)
	}
	return nil
}

func defaultFor(id Identity) *CodeConfig {
	for _, cfg := range Defaults() {
		if cfg.Identity == id {
			return cfg
		}
	}
	return nil
}

// Reload resets the registry to the defaults and re-applies the configured
// directory. The new set is built aside and swapped in at once, so lookups
// running during a reload see either the old or the new configuration.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	staged := NewDefaultRegistry()
	loadErr := staged.LoadDirectory(r.dir)

	r.mu.Lock()
	r.configs = staged.configs
	r.mu.Unlock()

	return loadErr
}

// SetOnChange sets a callback invoked after a watched file is applied. cfg
// is nil for removals.
func (r *Registry) SetOnChange(fn func(event string, cfg *CodeConfig)) {
	r.onChange = fn
}

// SetOnError sets a callback for errors raised while watching.
func (r *Registry) SetOnError(fn func(err error)) {
	r.onError = fn
}

// Watch starts watching the configured directory for YAML changes.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan)
	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.reportError(fmt.Errorf("watching codes: %w", err))
		}
	}
}

func (r *Registry) handleFileChange(path, event string) {
	if err := r.LoadFile(path); err != nil {
		r.reportError(fmt.Errorf("%s: %w", filepath.Base(path), err))
		return
	}
	if r.onChange != nil {
		var header struct {
			Identity Identity `yaml:"identity"`
		}
		if data, err := os.ReadFile(path); err == nil && yaml.Unmarshal(data, &header) == nil {
			cfg, _ := r.Get(header.Identity)
			r.onChange(event, cfg)
		}
	}
}

// handleFileRemove reloads everything: the registry does not track which file
// an override came from.
func (r *Registry) handleFileRemove() {
	if err := r.Reload(); err != nil {
		r.reportError(err)
	}
	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

func (r *Registry) reportError(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}

// StopWatch stops watching the directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
