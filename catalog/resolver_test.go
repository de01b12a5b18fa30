package catalog

import (
	"io/fs"
	"strings"
	"testing"

	"ricochet/server/internal/weapons"
)

type memorySource struct {
	path string
	data []byte
	err  error
}

func (m memorySource) Load() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]byte(nil), m.data...), nil
}

func (m memorySource) Path() string {
	return m.path
}

const arrayCatalog = `[
  {
    "id": "marksman",
    "name": "Marksman Rifle",
    "slot": "primary",
    "kind": "rifle",
    "fireRate": 6,
    "recoil": {"vertical": 1.5, "horizontal": {"min": -1, "max": 1}, "interval": 0.5},
    "ballistics": {"speed": 80, "drop": 9.8, "maxLifetime": 6, "damage": 30, "maxBounces": 2, "bounceSpeedModifier": 0.6},
    "clipSize": 10,
    "reloadTime": 2.5,
    "equipAnimation": "equip_marksman",
    "sounds": {"fire": "sfx/marksman"}
  },
  {
    "id": "trench-knife",
    "name": "Trench Knife",
    "slot": "secondary",
    "kind": "sword",
    "fireRate": 2,
    "equipAnimation": "equip_knife"
  }
]`

func TestResolverLoadArray(t *testing.T) {
	resolver, err := NewResolver(memorySource{path: "inline.json", data: []byte(arrayCatalog)})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	def, ok := resolver.Definition("marksman")
	if !ok {
		t.Fatalf("expected definition for marksman")
	}
	if def.Kind != weapons.KindRifle {
		t.Fatalf("expected kind rifle, got %q", def.Kind)
	}
	if def.Ballistics.Speed != 80 {
		t.Fatalf("expected speed 80, got %v", def.Ballistics.Speed)
	}

	entry, ok := resolver.Resolve("marksman")
	if !ok {
		t.Fatalf("expected to resolve marksman entry")
	}
	if len(entry.Blocks) == 0 {
		t.Fatalf("expected metadata blocks")
	}
	if _, ok := entry.Blocks["sounds"]; !ok {
		t.Fatalf("expected sounds metadata block")
	}
	if _, ok := entry.Blocks["fireRate"]; ok {
		t.Fatalf("definition keys must not leak into metadata blocks")
	}

	if got := resolver.IDs(); len(got) != 2 || got[0] != "marksman" || got[1] != "trench-knife" {
		t.Fatalf("IDs() = %v, want sorted [marksman trench-knife]", got)
	}
}

func TestResolverObjectSyntax(t *testing.T) {
	data := `{
  "sidearm": {
    "name": "Sidearm",
    "slot": "secondary",
    "kind": "pistol",
    "fireRate": 4,
    "ballistics": {"speed": 45, "maxLifetime": 4, "damage": 15, "bounceSpeedModifier": 0.45},
    "equipAnimation": "equip_sidearm"
  }
}`
	resolver, err := NewResolver(memorySource{path: "object.json", data: []byte(data)})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	def, ok := resolver.Definition("sidearm")
	if !ok {
		t.Fatalf("expected definition for sidearm")
	}
	if def.ID != "sidearm" {
		t.Fatalf("object key should backfill the id, got %q", def.ID)
	}
}

func TestResolverObjectKeyMismatch(t *testing.T) {
	data := `{"sidearm": {"id": "other", "slot": "secondary", "kind": "pistol", "fireRate": 4, "ballistics": {"speed": 45, "maxLifetime": 4}, "equipAnimation": "e"}}`
	if _, err := NewResolver(memorySource{path: "object.json", data: []byte(data)}); err == nil {
		t.Fatalf("expected mismatched object key to fail")
	}
}

func TestResolverRejectsInvalidDefinition(t *testing.T) {
	data := `[{"id": "broken", "slot": "belt", "kind": "rifle", "fireRate": 5, "ballistics": {"speed": 40, "maxLifetime": 5}, "equipAnimation": "e"}]`
	_, err := NewResolver(memorySource{path: "broken.json", data: []byte(data)})
	if err == nil {
		t.Fatalf("expected validation failure for unknown slot")
	}
	if !strings.Contains(err.Error(), "unknown slot") {
		t.Fatalf("error %q should surface the validation problem", err)
	}
}

func TestResolverRejectsDuplicateIDs(t *testing.T) {
	data := `[
  {"id": "twin", "slot": "primary", "kind": "rifle", "fireRate": 5, "ballistics": {"speed": 40, "maxLifetime": 5}, "equipAnimation": "e"},
  {"id": "twin", "slot": "primary", "kind": "rifle", "fireRate": 5, "ballistics": {"speed": 40, "maxLifetime": 5}, "equipAnimation": "e"}
]`
	if _, err := NewResolver(memorySource{path: "dup.json", data: []byte(data)}); err == nil {
		t.Fatalf("expected duplicate ids to fail")
	}
}

func TestResolverSkipsMissingSources(t *testing.T) {
	resolver, err := NewResolver(
		memorySource{path: "absent.json", err: fs.ErrNotExist},
		memorySource{path: "inline.json", data: []byte(arrayCatalog)},
	)
	if err != nil {
		t.Fatalf("missing files should be skipped, got %v", err)
	}
	if _, ok := resolver.Definition("marksman"); !ok {
		t.Fatalf("surviving source should still load")
	}
}

func TestResolverLaterSourcesOverride(t *testing.T) {
	overlay := `[{"id": "marksman", "name": "Tuned Marksman", "slot": "primary", "kind": "rifle", "fireRate": 9, "recoil": {"vertical": 1, "horizontal": {"min": -1, "max": 1}, "interval": 0.5}, "ballistics": {"speed": 85, "maxLifetime": 6, "damage": 28, "bounceSpeedModifier": 0.6}, "equipAnimation": "equip_marksman"}]`
	resolver, err := NewResolver(
		memorySource{path: "base.json", data: []byte(arrayCatalog)},
		memorySource{path: "overlay.json", data: []byte(overlay)},
	)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	def, ok := resolver.Definition("marksman")
	if !ok {
		t.Fatalf("expected definition for marksman")
	}
	if def.FireRate != 9 {
		t.Fatalf("overlay should win, fireRate = %v", def.FireRate)
	}
	// The entry only present in the base survives.
	if _, ok := resolver.Definition("trench-knife"); !ok {
		t.Fatalf("base-only entries should survive an overlay")
	}
}

func TestResolveReturnsIsolatedCopies(t *testing.T) {
	resolver, err := NewResolver(memorySource{path: "inline.json", data: []byte(arrayCatalog)})
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	def, _ := resolver.Definition("marksman")
	def.FireRate = 999

	again, _ := resolver.Definition("marksman")
	if again.FireRate != 6 {
		t.Fatalf("caller mutation leaked into the resolver: fireRate = %v", again.FireRate)
	}
}
