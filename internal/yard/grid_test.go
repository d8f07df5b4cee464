package yard

import (
	"errors"
	"testing"

	"github.com/cegyard/dock-scheduler/internal/model"
)

func intp(n int) *int { return &n }

func patioFrota(id uint64, numero string) model.Frota {
	return model.Frota{ID: id, Numero: numero, Status: model.FrotaPatio}
}

func rampaFrota(id uint64, numero string, rampa, galpao int, carregada bool) model.Frota {
	return model.Frota{
		ID: id, Numero: numero, Status: model.FrotaRampa,
		Rampa: intp(rampa), Galpao: intp(galpao), Carregada: carregada,
	}
}

var cfg4x4 = model.YardConfig{Vaos: 4, RampasPorVao: 4}

func TestAlocar(t *testing.T) {
	t.Run("patio vehicle lands on a free ramp", func(t *testing.T) {
		frotas := []model.Frota{patioFrota(1, "CEG-001")}
		got, err := Alocar(frotas, nil, cfg4x4, 1, 3, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		f := got[0]
		if f.Status != model.FrotaRampa || *f.Rampa != 3 || *f.Galpao != 1 || f.Carregada {
			t.Fatalf("unexpected state: %+v", f)
		}
	})

	t.Run("occupied ramp is rejected", func(t *testing.T) {
		frotas := []model.Frota{
			rampaFrota(1, "CEG-001", 3, 1, false),
			patioFrota(2, "CEG-002"),
		}
		if _, err := Alocar(frotas, nil, cfg4x4, 2, 3, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("blocked ramp is rejected", func(t *testing.T) {
		frotas := []model.Frota{patioFrota(1, "CEG-001")}
		blocks := []model.RampaBloqueada{{Rampa: 3, Galpao: 1, Bloqueada: true}}
		if _, err := Alocar(frotas, blocks, cfg4x4, 1, 3, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("out-of-bounds ramp is rejected", func(t *testing.T) {
		frotas := []model.Frota{patioFrota(1, "CEG-001")}
		if _, err := Alocar(frotas, nil, cfg4x4, 1, 17, 5); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("mismatched bay addressing is rejected", func(t *testing.T) {
		frotas := []model.Frota{patioFrota(1, "CEG-001")}
		// ramp 3 belongs to bay 1 under 4x4, not bay 2
		if _, err := Alocar(frotas, nil, cfg4x4, 1, 3, 2); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("vehicle already on a ramp cannot be allocated", func(t *testing.T) {
		frotas := []model.Frota{rampaFrota(1, "CEG-001", 2, 1, false)}
		if _, err := Alocar(frotas, nil, cfg4x4, 1, 5, 2); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		if _, err := Alocar(nil, nil, cfg4x4, 99, 1, 1); !errors.Is(err, ErrFrotaNotFound) {
			t.Fatalf("expected ErrFrotaNotFound, got %v", err)
		}
	})
}

func TestLifecycle(t *testing.T) {
	t.Run("finalize requires carregada", func(t *testing.T) {
		frotas := []model.Frota{rampaFrota(1, "CEG-001", 3, 1, false)}
		if _, err := Finalizar(frotas, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
		if frotas[0].Status != model.FrotaRampa {
			t.Fatalf("vehicle must stay on the ramp, got %q", frotas[0].Status)
		}

		frotas, loaded, err := ToggleCarregada(frotas, 1)
		if err != nil || !loaded {
			t.Fatalf("toggle failed: loaded=%v err=%v", loaded, err)
		}
		frotas, err = Finalizar(frotas, 1)
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		f := frotas[0]
		if f.Status != model.FrotaDespachada {
			t.Fatalf("expected despachada, got %q", f.Status)
		}
		if f.Rampa != nil || f.Galpao != nil || f.Carregada {
			t.Fatalf("active ramp fields must be cleared: %+v", f)
		}
		if f.RampaDespacho == nil || *f.RampaDespacho != 3 || *f.GalpaoDespacho != 1 {
			t.Fatalf("dispatch history lost: %+v", f)
		}
		if occ := OccupiedBy(frotas, 3, 1); occ != nil {
			t.Fatalf("ramp 3/1 should be free after dispatch, held by %s", occ.Numero)
		}
	})

	t.Run("remove rejects a loaded vehicle", func(t *testing.T) {
		frotas := []model.Frota{rampaFrota(1, "CEG-001", 3, 1, true)}
		if _, err := Remover(frotas, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("remove returns an unloaded vehicle to the patio", func(t *testing.T) {
		frotas := []model.Frota{rampaFrota(1, "CEG-001", 3, 1, false)}
		got, err := Remover(frotas, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		f := got[0]
		if f.Status != model.FrotaPatio || f.Rampa != nil || f.Galpao != nil {
			t.Fatalf("unexpected state: %+v", f)
		}
	})

	t.Run("toggle carregada requires rampa status", func(t *testing.T) {
		frotas := []model.Frota{patioFrota(1, "CEG-001")}
		if _, _, err := ToggleCarregada(frotas, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("despachada is terminal", func(t *testing.T) {
		frotas := []model.Frota{{ID: 1, Numero: "CEG-001", Status: model.FrotaDespachada}}
		if _, err := Remover(frotas, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
		if _, err := Finalizar(frotas, 1); !errors.Is(err, ErrPrecondition) {
			t.Fatalf("expected ErrPrecondition, got %v", err)
		}
	})
}

func TestToggleBloqueio(t *testing.T) {
	blocks, on := ToggleBloqueio(nil, 2, 1)
	if !on || !IsBlocked(blocks, 2, 1) {
		t.Fatal("first toggle must block the ramp")
	}
	blocks, on = ToggleBloqueio(blocks, 2, 1)
	if on || IsBlocked(blocks, 2, 1) {
		t.Fatal("second toggle must unblock the ramp")
	}
	if len(blocks) != 1 {
		t.Fatalf("block record should be reused, got %d records", len(blocks))
	}
}

func TestBlockDoesNotEvict(t *testing.T) {
	frotas := []model.Frota{rampaFrota(1, "CEG-001", 2, 1, true)}
	blocks, _ := ToggleBloqueio(nil, 2, 1)
	if occ := OccupiedBy(frotas, 2, 1); occ == nil {
		t.Fatal("blocking must not evict the occupying vehicle")
	}
	if !IsBlocked(blocks, 2, 1) {
		t.Fatal("ramp should report blocked")
	}
}

func TestReconfigure(t *testing.T) {
	t.Run("out-of-bounds vehicle is evicted", func(t *testing.T) {
		frotas := []model.Frota{rampaFrota(1, "CEG-001", 5, 2, true)}
		got, _ := Reconfigure(frotas, nil, model.YardConfig{Vaos: 1, RampasPorVao: 4})
		f := got[0]
		if f.Status != model.FrotaPatio || f.Rampa != nil || f.Galpao != nil || f.Carregada {
			t.Fatalf("expected eviction to patio, got %+v", f)
		}
	})

	t.Run("in-bounds vehicle gets a renumbered ramp", func(t *testing.T) {
		// ramp 5 in bay 2 under 4 ramps per bay is the first ramp of
		// its bay; with 2 ramps per bay that position is ramp 3.
		frotas := []model.Frota{rampaFrota(1, "CEG-001", 5, 2, false)}
		got, _ := Reconfigure(frotas, nil, model.YardConfig{Vaos: 2, RampasPorVao: 2})
		f := got[0]
		if f.Status != model.FrotaRampa {
			t.Fatalf("vehicle should survive reconfiguration, got %q", f.Status)
		}
		if *f.Rampa != 3 || *f.Galpao != 2 {
			t.Fatalf("expected ramp 3/bay 2, got %d/%d", *f.Rampa, *f.Galpao)
		}
	})

	t.Run("out-of-bounds blocks are discarded", func(t *testing.T) {
		blocks := []model.RampaBloqueada{
			{Rampa: 2, Galpao: 1, Bloqueada: true},
			{Rampa: 15, Galpao: 4, Bloqueada: true},
		}
		_, gotBlocks := Reconfigure(nil, blocks, model.YardConfig{Vaos: 1, RampasPorVao: 4})
		if len(gotBlocks) != 1 || gotBlocks[0].Rampa != 2 {
			t.Fatalf("expected only ramp 2 block to survive, got %v", gotBlocks)
		}
	})
}

func TestSummarize(t *testing.T) {
	frotas := []model.Frota{
		rampaFrota(1, "CEG-001", 1, 1, false),
		rampaFrota(2, "CEG-002", 5, 2, true),
		patioFrota(3, "CEG-003"),
	}
	blocks := []model.RampaBloqueada{
		{Rampa: 2, Galpao: 1, Bloqueada: true},
		{Rampa: 3, Galpao: 1, Bloqueada: false},
	}
	s := Summarize(frotas, blocks, cfg4x4)
	if s.TotalRampas != 16 || s.RampasOcupadas != 2 || s.RampasBloqueadas != 1 || s.RampasLivres != 13 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
