// Package slot derives dock-slot (BOX-D) occupancy from the load
// collection.  Nothing here mutates state: every function is a pure
// recomputation over the records it is given, which is cheap at the
// expected collection sizes (tens to low hundreds).
package slot

import (
	"strconv"
	"strings"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// StandardSlotCount is the number of fixed, always-addressable dock
// slots ("1".."32").  Slots beyond the standard range exist only
// while some record references them.
const StandardSlotCount = 32

// StandardSlots returns the fixed slot sequence "1".."32" in numeric
// ascending order.
func StandardSlots() []string {
	out := make([]string, 0, StandardSlotCount)
	for i := 1; i <= StandardSlotCount; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// occupies reports whether the record currently holds its BOX-D.  A
// departed trip (JA_FOI) or a record with a blank status or slot does
// not occupy anything.
func occupies(c model.Carga) bool {
	status := strings.ToUpper(strings.TrimSpace(c.Status))
	return status != "" && status != model.StatusJaFoi && strings.TrimSpace(c.BoxD) != ""
}

// OccupiedSlots returns the set of dock slots referenced by an active
// record.
func OccupiedSlots(cargas []model.Carga) map[string]struct{} {
	occ := make(map[string]struct{})
	for _, c := range cargas {
		if occupies(c) {
			occ[strings.TrimSpace(c.BoxD)] = struct{}{}
		}
	}
	return occ
}

// ExtraSlots returns every dock-slot value seen in the records that is
// not one of the 32 standard slots, de-duplicated, in first-seen order.
func ExtraSlots(cargas []model.Carga) []string {
	seen := make(map[string]struct{}, len(cargas))
	var extras []string
	for _, c := range cargas {
		b := strings.TrimSpace(c.BoxD)
		if b == "" || isStandard(b) {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		extras = append(extras, b)
	}
	return extras
}

// AllSlots returns the full addressable slot list: the standard
// sequence followed by the extras currently present in the records.
func AllSlots(cargas []model.Carga) []string {
	return append(StandardSlots(), ExtraSlots(cargas)...)
}

// FreeSlots returns the addressable slots no active record occupies.
func FreeSlots(cargas []model.Carga) []string {
	occ := OccupiedSlots(cargas)
	all := AllSlots(cargas)
	free := make([]string, 0, len(all))
	for _, s := range all {
		if _, taken := occ[s]; !taken {
			free = append(free, s)
		}
	}
	return free
}

// isStandard matches against the exact standard strings, so a padded
// form like "05" counts as an extra slot distinct from "5".
func isStandard(b string) bool {
	n, err := strconv.Atoi(b)
	return err == nil && n >= 1 && n <= StandardSlotCount && strconv.Itoa(n) == b
}
