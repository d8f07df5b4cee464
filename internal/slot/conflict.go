package slot

import (
	"fmt"
	"strings"
	"time"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// Conflict reports one dock slot claimed by two or more active trips.
// Viagens keeps record iteration order; a trip number may repeat when
// the input contains duplicates.
type Conflict struct {
	BoxD    string   `json:"boxd"`
	Viagens []string `json:"viagens"`
}

// FindConflicts maps every BOX-D to the trips holding it and returns
// an entry per slot with at least two claimants.  Only records with a
// non-empty slot and status LIVRE, COMPLETO or PARCIAL participate;
// departed trips (JA_FOI) never conflict.  Records with a blank trip
// number still occupy the slot but are not listed as claimants.
//
// The result is recomputed from scratch on every call; callers must
// invoke it after each mutation of the collection.
func FindConflicts(cargas []model.Carga) []Conflict {
	byBox := make(map[string][]string)
	var order []string

	for _, c := range cargas {
		boxd := strings.TrimSpace(c.BoxD)
		if boxd == "" {
			continue
		}
		switch c.Status {
		case model.StatusLivre, model.StatusCompleto, model.StatusParcial:
		default:
			continue
		}
		if _, seen := byBox[boxd]; !seen {
			byBox[boxd] = []string{}
			order = append(order, boxd)
		}
		if viagem := strings.TrimSpace(c.Viagem); viagem != "" {
			byBox[boxd] = append(byBox[boxd], viagem)
		}
	}

	var conflicts []Conflict
	for _, boxd := range order {
		if trips := byBox[boxd]; len(trips) > 1 {
			conflicts = append(conflicts, Conflict{BoxD: boxd, Viagens: trips})
		}
	}
	return conflicts
}

// DefaultOccupationLimit is how long a slot may stay occupied before
// the periodic scan raises an advisory warning.
const DefaultOccupationLimit = 4 * time.Hour

// Overstay flags a load whose dock slot has been occupied beyond the
// allowed window, measured from its scheduled time.
type Overstay struct {
	CargaID  string        `json:"carga_id"`
	Viagem   string        `json:"viagem"`
	BoxD     string        `json:"boxd"`
	Occupied time.Duration `json:"-"`
	Horas    float64       `json:"horas_ocupado"`
}

// FindOverstays scans for active loads (non-empty BOX-D, status other
// than LIVRE) whose scheduled HH:MM time lies more than limit before
// now on the same day.  This is an advisory check, not an invariant:
// records with unparseable times are skipped.
func FindOverstays(cargas []model.Carga, now time.Time, limit time.Duration) []Overstay {
	var out []Overstay
	for _, c := range cargas {
		if strings.TrimSpace(c.BoxD) == "" || c.Status == model.StatusLivre {
			continue
		}
		scheduled, err := atClockTime(now, c.Hora)
		if err != nil {
			continue
		}
		occupied := now.Sub(scheduled)
		if occupied > limit {
			out = append(out, Overstay{
				CargaID:  c.ID,
				Viagem:   c.Viagem,
				BoxD:     strings.TrimSpace(c.BoxD),
				Occupied: occupied,
				Horas:    occupied.Hours(),
			})
		}
	}
	return out
}

// atClockTime interprets an "HH:MM" string as a moment on the same
// day as ref, in ref's location.
func atClockTime(ref time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse hora %q: %w", hhmm, err)
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, ref.Location()), nil
}
