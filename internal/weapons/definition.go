package weapons

import "fmt"

// Slot identifies which holster position a weapon occupies. Actors carry at
// most one weapon per slot.
type Slot string

const (
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
)

// SlotCount is the number of carry positions on a weapon mount.
const SlotCount = 2

// slotOrder fixes the storage layout of mount slots. Slot resolution goes
// through this table so malformed definitions fail at load time instead of
// indexing with an unchecked cast.
var slotOrder = [SlotCount]Slot{SlotPrimary, SlotSecondary}

var slotIndices = map[Slot]int{
	SlotPrimary:   0,
	SlotSecondary: 1,
}

// SlotIndex resolves a slot to its mount storage index. The second return
// value reports whether the slot is known.
func SlotIndex(slot Slot) (int, bool) {
	idx, ok := slotIndices[slot]
	return idx, ok
}

// SlotAt returns the slot stored at a mount index.
func SlotAt(idx int) Slot {
	if idx < 0 || idx >= SlotCount {
		return ""
	}
	return slotOrder[idx]
}

// Kind selects the firing behavior of a weapon.
type Kind string

const (
	KindRifle  Kind = "rifle"
	KindPistol Kind = "pistol"
	KindSword  Kind = "sword"
)

// Melee reports whether the kind attacks without spawning bullets.
func (k Kind) Melee() bool {
	return k == KindSword
}

func validKind(k Kind) bool {
	switch k {
	case KindRifle, KindPistol, KindSword:
		return true
	default:
		return false
	}
}

// RecoilSpan is a closed interval of horizontal recoil offsets in degrees.
type RecoilSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (s RecoilSpan) zero() bool {
	return s.Min == 0 && s.Max == 0
}

// RecoilProfile tunes how firing disturbs the aim orientation. Vertical is a
// fixed per-shot pitch kick in degrees; Horizontal spans the cyclic yaw
// pattern enumerated every Interval degrees.
type RecoilProfile struct {
	Vertical   float64    `json:"vertical"`
	Horizontal RecoilSpan `json:"horizontal"`
	Interval   float64    `json:"interval"`
}

// Ballistics tunes bullet flight for ranged kinds. Melee definitions leave
// it zero.
type Ballistics struct {
	Speed               float64 `json:"speed"`
	Drop                float64 `json:"drop"`
	MaxLifetime         float64 `json:"maxLifetime"`
	Damage              float64 `json:"damage"`
	MaxBounces          int     `json:"maxBounces"`
	BounceSpeedModifier float64 `json:"bounceSpeedModifier"`
	Pierce              int     `json:"pierce"`
	Knockback           float64 `json:"knockback"`
}

// Definition is the immutable tuning record for one weapon. Instances share
// a definition; per-instance state lives on Instance.
//
// ClipSize and ReloadTime are carried for clients but ignored by the
// simulation; there is no ammo economy server-side.
type Definition struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Slot           Slot          `json:"slot"`
	Kind           Kind          `json:"kind"`
	FireRate       float64       `json:"fireRate"`
	Recoil         RecoilProfile `json:"recoil"`
	Ballistics     Ballistics    `json:"ballistics"`
	ClipSize       int           `json:"clipSize"`
	ReloadTime     float64       `json:"reloadTime"`
	EquipAnimation string        `json:"equipAnimation"`
}

// Validate reports the first configuration problem with the definition.
// Catalog loading rejects invalid definitions before any instance exists.
func (d *Definition) Validate() error {
	if d == nil {
		return fmt.Errorf("weapon definition is nil")
	}
	if d.ID == "" {
		return fmt.Errorf("weapon definition missing id")
	}
	if _, ok := SlotIndex(d.Slot); !ok {
		return fmt.Errorf("weapon %q: unknown slot %q", d.ID, d.Slot)
	}
	if !validKind(d.Kind) {
		return fmt.Errorf("weapon %q: unknown kind %q", d.ID, d.Kind)
	}
	if d.FireRate <= 0 {
		return fmt.Errorf("weapon %q: fireRate must be positive, got %v", d.ID, d.FireRate)
	}
	if d.Recoil.Horizontal.Min > d.Recoil.Horizontal.Max {
		return fmt.Errorf("weapon %q: horizontal recoil span inverted", d.ID)
	}
	if !d.Recoil.Horizontal.zero() && d.Recoil.Interval <= 0 {
		return fmt.Errorf("weapon %q: recoil interval must be positive for a non-zero span", d.ID)
	}
	if d.EquipAnimation == "" {
		return fmt.Errorf("weapon %q: missing equip animation", d.ID)
	}
	if d.Kind.Melee() {
		return nil
	}
	if d.Ballistics.Speed <= 0 {
		return fmt.Errorf("weapon %q: bullet speed must be positive, got %v", d.ID, d.Ballistics.Speed)
	}
	if d.Ballistics.MaxLifetime <= 0 {
		return fmt.Errorf("weapon %q: bullet lifetime must be positive, got %v", d.ID, d.Ballistics.MaxLifetime)
	}
	if d.Ballistics.Drop < 0 {
		return fmt.Errorf("weapon %q: bullet drop cannot be negative", d.ID)
	}
	if d.Ballistics.BounceSpeedModifier < 0 {
		return fmt.Errorf("weapon %q: bounce speed modifier cannot be negative", d.ID)
	}
	return nil
}
