package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"ricochet/server/internal/weapons"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// Entry captures the resolved catalog data for a single designer-authored
// weapon: the validated definition plus any additional JSON blocks that were
// present on disk (display strings, sound banks, tracer styling).
type Entry struct {
	ID         string
	Definition *weapons.Definition
	Blocks     map[string]json.RawMessage
}

// EntryDocument represents a single catalog entry as it appears on disk. The
// definition fields sit inline; unknown keys are preserved as raw blocks for
// client tooling. The struct is exported so the schema generator can reflect
// over the configuration contract shared with designers.
type EntryDocument struct {
	weapons.Definition
	Blocks map[string]json.RawMessage `json:"-" jsonschema:"-"`
}

// definitionKeys lists the JSON keys owned by the weapon definition itself.
// Everything else in an entry document is an opaque designer block.
var definitionKeys = []string{
	"id", "name", "slot", "kind", "fireRate", "recoil",
	"ballistics", "clipSize", "reloadTime", "equipAnimation",
}

func (e *EntryDocument) UnmarshalJSON(data []byte) error {
	type rawEntry EntryDocument
	var alias rawEntry
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var blocks map[string]json.RawMessage
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	for _, key := range definitionKeys {
		delete(blocks, key)
	}
	if len(blocks) == 0 {
		blocks = nil
	}
	alias.Blocks = blocks
	*e = EntryDocument(alias)
	return nil
}

func (e Entry) clone() Entry {
	clone := Entry{
		ID:     e.ID,
		Blocks: cloneRawMap(e.Blocks),
	}
	if e.Definition != nil {
		defCopy := *e.Definition
		clone.Definition = &defCopy
	}
	return clone
}

func cloneRawMap(src map[string]json.RawMessage) map[string]json.RawMessage {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]json.RawMessage, len(src))
	for key, value := range src {
		if len(value) == 0 {
			dst[key] = nil
			continue
		}
		copied := make(json.RawMessage, len(value))
		copy(copied, value)
		dst[key] = copied
	}
	return dst
}

// Resolver merges one or more catalog sources into a stable lookup table.
// Call Reload to pick up on-disk changes (used for dev hot reload).
type Resolver struct {
	mu      sync.RWMutex
	sources []source
	entries map[string]Entry
}

// DefaultPaths returns the canonical catalog locations relative to the server
// module root. Callers may pass these to Load.
func DefaultPaths() []string {
	candidates := []string{
		filepath.Join("config", "weapons", "definitions.json"),
		filepath.Join("..", "config", "weapons", "definitions.json"),
	}

	paths := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		cleaned := filepath.Clean(candidate)
		if _, duplicate := seen[cleaned]; duplicate {
			continue
		}
		seen[cleaned] = struct{}{}
		paths = append(paths, cleaned)
	}
	return paths
}

// Load constructs a Resolver backed by the provided catalog file paths.
func Load(paths ...string) (*Resolver, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return NewResolver(sources...)
}

// NewResolver constructs a Resolver from arbitrary sources. Tests can supply
// in-memory sources while production code uses fileSource.
func NewResolver(sources ...source) (*Resolver, error) {
	r := &Resolver{
		sources: append([]source(nil), sources...),
		entries: make(map[string]Entry),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all catalog sources. Later sources override earlier ones to
// support local overlays during development. Definitions are validated here so
// a bad entry never reaches a weapon mount.
func (r *Resolver) Reload() error {
	if r == nil {
		return nil
	}
	entries := make(map[string]Entry)
	for _, src := range r.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		documents, err := decodeEntries(data)
		if err != nil {
			return fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		seen := make(map[string]struct{}, len(documents))
		for _, doc := range documents {
			id := strings.TrimSpace(doc.ID)
			if id == "" {
				return fmt.Errorf("catalog: entry missing id in %s", src.Path())
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("catalog: duplicate id %q in %s", id, src.Path())
			}
			seen[id] = struct{}{}

			def := doc.Definition
			def.ID = id
			if err := def.Validate(); err != nil {
				return fmt.Errorf("catalog: %s: %w", src.Path(), err)
			}

			entries[id] = Entry{
				ID:         id,
				Definition: &def,
				Blocks:     doc.Blocks,
			}
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// Resolve returns the catalog entry for the provided weapon ID.
func (r *Resolver) Resolve(id string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// Definition returns a copy of the validated definition for the weapon ID.
func (r *Resolver) Definition(id string) (*weapons.Definition, bool) {
	entry, ok := r.Resolve(id)
	if !ok || entry.Definition == nil {
		return nil, false
	}
	return entry.Definition, true
}

// Entries returns a cloned snapshot of the catalog keyed by weapon ID.
func (r *Resolver) Entries() map[string]Entry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Entry, len(r.entries))
	for id, entry := range r.entries {
		out[id] = entry.clone()
	}
	return out
}

// IDs returns the catalog's weapon identifiers in sorted order.
func (r *Resolver) IDs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func decodeEntries(data []byte) ([]EntryDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var entries []EntryDocument
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(object))
		for id := range object {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		entries := make([]EntryDocument, 0, len(ids))
		for _, id := range ids {
			var entry EntryDocument
			if err := json.Unmarshal(object[id], &entry); err != nil {
				return nil, fmt.Errorf("entry %q: %w", id, err)
			}
			if entry.ID == "" {
				entry.ID = id
			} else if entry.ID != id {
				return nil, fmt.Errorf("entry id %q does not match key %q", entry.ID, id)
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unexpected json token %q", string(trimmed[:1]))
	}
}
