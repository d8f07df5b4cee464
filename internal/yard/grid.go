// Package yard models the loading-ramp grid and the fleet-vehicle
// lifecycle.  The grid is bays ("vãos") times ramps-per-bay with a
// flattened ramp numbering; vehicles move patio -> rampa ->
// despachada, with rampa -> patio as the only way back.
//
// Operations are pure: they take the current collections and return
// updated copies, leaving persistence to the caller.
package yard

import (
	"errors"
	"fmt"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// ErrPrecondition is wrapped by every rejected transition: ramp
// occupied, blocked or out of range, or the vehicle not in the state
// the operation requires.  The requested transition simply does not
// happen.
var ErrPrecondition = errors.New("precondicao de alocacao violada")

// ErrFrotaNotFound is returned when the referenced vehicle does not
// exist in the collection.
var ErrFrotaNotFound = errors.New("frota nao encontrada")

// OccupiedBy returns the vehicle on ramp (rampa, galpao), or nil when
// the ramp is free.  A ramp holds at most one vehicle.
func OccupiedBy(frotas []model.Frota, rampa, galpao int) *model.Frota {
	for i := range frotas {
		f := &frotas[i]
		if f.Status == model.FrotaRampa && f.Rampa != nil && f.Galpao != nil &&
			*f.Rampa == rampa && *f.Galpao == galpao {
			return f
		}
	}
	return nil
}

// IsBlocked reports whether (rampa, galpao) is currently blocked for
// allocation.
func IsBlocked(blocks []model.RampaBloqueada, rampa, galpao int) bool {
	for _, b := range blocks {
		if b.Rampa == rampa && b.Galpao == galpao {
			return b.Bloqueada
		}
	}
	return false
}

// Alocar moves a patio vehicle onto ramp (rampa, galpao).  The ramp
// must exist under cfg and be neither occupied nor blocked; the
// loaded flag starts false.
func Alocar(frotas []model.Frota, blocks []model.RampaBloqueada, cfg model.YardConfig, frotaID uint64, rampa, galpao int) ([]model.Frota, error) {
	idx, err := indexOf(frotas, frotaID)
	if err != nil {
		return frotas, err
	}
	if frotas[idx].Status != model.FrotaPatio {
		return frotas, fmt.Errorf("%w: frota %s nao esta no patio", ErrPrecondition, frotas[idx].Numero)
	}
	if !cfg.Contains(rampa, galpao) {
		return frotas, fmt.Errorf("%w: rampa %d/vao %d fora da configuracao", ErrPrecondition, rampa, galpao)
	}
	if occ := OccupiedBy(frotas, rampa, galpao); occ != nil {
		return frotas, fmt.Errorf("%w: rampa %d/vao %d ocupada por %s", ErrPrecondition, rampa, galpao, occ.Numero)
	}
	if IsBlocked(blocks, rampa, galpao) {
		return frotas, fmt.Errorf("%w: rampa %d/vao %d bloqueada", ErrPrecondition, rampa, galpao)
	}

	out := clone(frotas)
	r, g := rampa, galpao
	out[idx].Status = model.FrotaRampa
	out[idx].Rampa = &r
	out[idx].Galpao = &g
	out[idx].Carregada = false
	return out, nil
}

// ToggleCarregada flips the loaded flag of a vehicle on a ramp and
// returns the new flag value.
func ToggleCarregada(frotas []model.Frota, frotaID uint64) ([]model.Frota, bool, error) {
	idx, err := indexOf(frotas, frotaID)
	if err != nil {
		return frotas, false, err
	}
	if frotas[idx].Status != model.FrotaRampa {
		return frotas, false, fmt.Errorf("%w: frota %s nao esta em rampa", ErrPrecondition, frotas[idx].Numero)
	}
	out := clone(frotas)
	out[idx].Carregada = !out[idx].Carregada
	return out, out[idx].Carregada, nil
}

// Finalizar dispatches a loaded vehicle.  The ramp/bay pair is copied
// to the dispatch fields and the active fields are cleared, which
// frees the ramp for new allocation.  Despachada is terminal.
func Finalizar(frotas []model.Frota, frotaID uint64) ([]model.Frota, error) {
	idx, err := indexOf(frotas, frotaID)
	if err != nil {
		return frotas, err
	}
	f := frotas[idx]
	if f.Status != model.FrotaRampa {
		return frotas, fmt.Errorf("%w: frota %s nao esta em rampa", ErrPrecondition, f.Numero)
	}
	if !f.Carregada {
		return frotas, fmt.Errorf("%w: frota %s ainda nao foi carregada", ErrPrecondition, f.Numero)
	}
	out := clone(frotas)
	out[idx].Status = model.FrotaDespachada
	out[idx].RampaDespacho = f.Rampa
	out[idx].GalpaoDespacho = f.Galpao
	out[idx].Rampa = nil
	out[idx].Galpao = nil
	out[idx].Carregada = false
	return out, nil
}

// Remover returns a vehicle from a ramp to the patio.  A loaded
// vehicle cannot be removed: active loading is finished via
// Finalizar, never interrupted.
func Remover(frotas []model.Frota, frotaID uint64) ([]model.Frota, error) {
	idx, err := indexOf(frotas, frotaID)
	if err != nil {
		return frotas, err
	}
	f := frotas[idx]
	if f.Status != model.FrotaRampa {
		return frotas, fmt.Errorf("%w: frota %s nao esta em rampa", ErrPrecondition, f.Numero)
	}
	if f.Carregada {
		return frotas, fmt.Errorf("%w: frota %s carregada deve ser finalizada", ErrPrecondition, f.Numero)
	}
	out := clone(frotas)
	out[idx].Status = model.FrotaPatio
	out[idx].Rampa = nil
	out[idx].Galpao = nil
	out[idx].Carregada = false
	return out, nil
}

// ToggleBloqueio flips the block flag for (rampa, galpao), creating
// the block record on first use, and returns the new flag.  Blocking
// never evicts an occupying vehicle; it only gates future allocation.
func ToggleBloqueio(blocks []model.RampaBloqueada, rampa, galpao int) ([]model.RampaBloqueada, bool) {
	out := make([]model.RampaBloqueada, len(blocks))
	copy(out, blocks)
	for i := range out {
		if out[i].Rampa == rampa && out[i].Galpao == galpao {
			out[i].Bloqueada = !out[i].Bloqueada
			return out, out[i].Bloqueada
		}
	}
	out = append(out, model.RampaBloqueada{Rampa: rampa, Galpao: galpao, Bloqueada: true})
	return out, true
}

// Reconfigure applies a new grid shape.  Each on-ramp vehicle keeps
// its bay and gets its ramp number recomputed under the new flattened
// numbering; vehicles whose bay or recomputed ramp falls outside the
// new bounds are evicted to the patio.  Block records that address a
// ramp outside the new bounds are discarded.  This is destructive and
// non-reversible; callers must confirm before invoking it.
func Reconfigure(frotas []model.Frota, blocks []model.RampaBloqueada, next model.YardConfig) ([]model.Frota, []model.RampaBloqueada) {
	outF := clone(frotas)
	for i := range outF {
		f := &outF[i]
		if f.Status != model.FrotaRampa || f.Rampa == nil || f.Galpao == nil {
			continue
		}
		novaRampa := (*f.Galpao-1)*next.RampasPorVao + (*f.Rampa-1)%next.RampasPorVao + 1
		if *f.Galpao > next.Vaos || novaRampa > next.TotalRampas() {
			f.Status = model.FrotaPatio
			f.Rampa = nil
			f.Galpao = nil
			f.Carregada = false
			continue
		}
		r := novaRampa
		f.Rampa = &r
	}

	outB := make([]model.RampaBloqueada, 0, len(blocks))
	for _, b := range blocks {
		if b.Galpao <= next.Vaos && b.Rampa <= next.TotalRampas() {
			outB = append(outB, b)
		}
	}
	return outF, outB
}

// Stats summarizes grid occupancy for the dashboard cards.
type Stats struct {
	TotalRampas      int `json:"total_rampas"`
	RampasOcupadas   int `json:"rampas_ocupadas"`
	RampasBloqueadas int `json:"rampas_bloqueadas"`
	RampasLivres     int `json:"rampas_livres"`
}

// Summarize counts occupied, blocked and free ramps under cfg.
func Summarize(frotas []model.Frota, blocks []model.RampaBloqueada, cfg model.YardConfig) Stats {
	s := Stats{TotalRampas: cfg.TotalRampas()}
	for _, f := range frotas {
		if f.Status == model.FrotaRampa {
			s.RampasOcupadas++
		}
	}
	for _, b := range blocks {
		if b.Bloqueada {
			s.RampasBloqueadas++
		}
	}
	s.RampasLivres = s.TotalRampas - s.RampasOcupadas - s.RampasBloqueadas
	return s
}

func indexOf(frotas []model.Frota, id uint64) (int, error) {
	for i := range frotas {
		if frotas[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrFrotaNotFound
}

func clone(frotas []model.Frota) []model.Frota {
	out := make([]model.Frota, len(frotas))
	copy(out, frotas)
	return out
}
