package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/repository"
)

// memFrotaStore is an in-memory FrotaStore for handler tests.
type memFrotaStore struct {
	frotas []model.Frota
	nextID uint64
}

func (s *memFrotaStore) List(context.Context) ([]model.Frota, error) {
	out := make([]model.Frota, len(s.frotas))
	copy(out, s.frotas)
	return out, nil
}

func (s *memFrotaStore) Get(_ context.Context, id uint64) (model.Frota, error) {
	for _, f := range s.frotas {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Frota{}, repository.ErrFrotaNotFound
}

func (s *memFrotaStore) Create(_ context.Context, numero string) (model.Frota, error) {
	for _, f := range s.frotas {
		if f.Numero == numero {
			return model.Frota{}, repository.ErrFrotaExists
		}
	}
	s.nextID++
	f := model.Frota{ID: s.nextID, Numero: numero, Status: model.FrotaPatio}
	s.frotas = append(s.frotas, f)
	return f, nil
}

func (s *memFrotaStore) Update(_ context.Context, f model.Frota) error {
	for i := range s.frotas {
		if s.frotas[i].ID == f.ID {
			s.frotas[i] = f
			return nil
		}
	}
	return repository.ErrFrotaNotFound
}

func (s *memFrotaStore) UpdateAll(_ context.Context, frotas []model.Frota) error {
	s.frotas = make([]model.Frota, len(frotas))
	copy(s.frotas, frotas)
	return nil
}

func (s *memFrotaStore) Delete(_ context.Context, id uint64) error {
	for i := range s.frotas {
		if s.frotas[i].ID == id {
			s.frotas = append(s.frotas[:i], s.frotas[i+1:]...)
			return nil
		}
	}
	return repository.ErrFrotaNotFound
}

// memYardStore holds the yard configuration and blocks in memory.
type memYardStore struct {
	cfg    model.YardConfig
	blocks []model.RampaBloqueada
}

func (s *memYardStore) Config(context.Context) (model.YardConfig, error) { return s.cfg, nil }
func (s *memYardStore) SetConfig(_ context.Context, cfg model.YardConfig) error {
	s.cfg = cfg
	return nil
}
func (s *memYardStore) Blocks(context.Context) ([]model.RampaBloqueada, error) {
	return s.blocks, nil
}
func (s *memYardStore) ReplaceBlocks(_ context.Context, blocks []model.RampaBloqueada) error {
	s.blocks = blocks
	return nil
}

func newFrotaTestHandler() (*FrotaHandler, *memFrotaStore, *memYardStore) {
	frotas := &memFrotaStore{}
	yardStore := &memYardStore{cfg: model.YardConfig{Vaos: 2, RampasPorVao: 2}}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewFrotaHandler(frotas, yardStore, log), frotas, yardStore
}

func TestFrotaLifecycle(t *testing.T) {
	e := echo.New()
	h, frotas, yardStore := newFrotaTestHandler()
	ctx := context.Background()

	created, err := frotas.Create(ctx, "F-10")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Run("alocar moves patio vehicle onto ramp", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodPost, "/v1/frotas/1/alocar", `{"rampa":3,"galpao":2}`)
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := h.Alocar(c); err != nil {
			t.Fatalf("Alocar: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got, _ := frotas.Get(ctx, created.ID)
		if got.Status != model.FrotaRampa || got.Rampa == nil || *got.Rampa != 3 {
			t.Fatalf("expected on ramp 3, got %+v", got)
		}
	})

	t.Run("occupied ramp rejects a second vehicle", func(t *testing.T) {
		if _, err := frotas.Create(ctx, "F-11"); err != nil {
			t.Fatalf("seed: %v", err)
		}
		rec, c := doJSON(e, http.MethodPost, "/v1/frotas/2/alocar", `{"rampa":3,"galpao":2}`)
		c.SetParamNames("id")
		c.SetParamValues("2")
		if err := h.Alocar(c); err != nil {
			t.Fatalf("Alocar: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("finalizar requires carregada", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodPost, "/v1/frotas/1/finalizar", "")
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := h.Finalizar(c); err != nil {
			t.Fatalf("Finalizar: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 before loading, got %d", rec.Code)
		}
	})

	t.Run("carregada then finalizar dispatches", func(t *testing.T) {
		_, c := doJSON(e, http.MethodPost, "/v1/frotas/1/carregada", "")
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := h.ToggleCarregada(c); err != nil {
			t.Fatalf("ToggleCarregada: %v", err)
		}
		rec, c2 := doJSON(e, http.MethodPost, "/v1/frotas/1/finalizar", "")
		c2.SetParamNames("id")
		c2.SetParamValues("1")
		if err := h.Finalizar(c2); err != nil {
			t.Fatalf("Finalizar: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got, _ := frotas.Get(ctx, created.ID)
		if got.Status != model.FrotaDespachada || got.Rampa != nil {
			t.Fatalf("expected dispatched with free ramp, got %+v", got)
		}
		if got.RampaDespacho == nil || *got.RampaDespacho != 3 {
			t.Fatalf("expected dispatch ramp recorded, got %+v", got)
		}
	})

	t.Run("blocked ramp rejects allocation", func(t *testing.T) {
		yardStore.blocks = []model.RampaBloqueada{{Rampa: 1, Galpao: 1, Bloqueada: true}}
		rec, c := doJSON(e, http.MethodPost, "/v1/frotas/2/alocar", `{"rampa":1,"galpao":1}`)
		c.SetParamNames("id")
		c.SetParamValues("2")
		if err := h.Alocar(c); err != nil {
			t.Fatalf("Alocar: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 on blocked ramp, got %d", rec.Code)
		}
	})
}

func TestYardGridAndReconfigure(t *testing.T) {
	e := echo.New()
	h, frotas, yardStore := newFrotaTestHandler()
	ctx := context.Background()

	f, _ := frotas.Create(ctx, "F-20")
	r, g := 3, 2
	f.Status = model.FrotaRampa
	f.Rampa = &r
	f.Galpao = &g
	_ = frotas.Update(ctx, f)

	t.Run("grid lists every ramp with occupancy", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodGet, "/v1/rampas", "")
		if err := h.Grid(c); err != nil {
			t.Fatalf("Grid: %v", err)
		}
		var resp struct {
			Rampas []rampCell `json:"rampas"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if len(resp.Rampas) != 4 {
			t.Fatalf("expected 4 ramps, got %d", len(resp.Rampas))
		}
		if resp.Rampas[2].Frota == nil || resp.Rampas[2].Frota.Numero != "F-20" {
			t.Fatalf("expected F-20 on ramp 3, got %+v", resp.Rampas[2])
		}
	})

	t.Run("shrinking the grid evicts out-of-range vehicles", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodPut, "/v1/rampas/config", `{"vaos":1,"rampas_por_vao":1}`)
		if err := h.Reconfigure(c); err != nil {
			t.Fatalf("Reconfigure: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got, _ := frotas.Get(ctx, f.ID)
		if got.Status != model.FrotaPatio || got.Rampa != nil {
			t.Fatalf("expected eviction to patio, got %+v", got)
		}
		if yardStore.cfg.TotalRampas() != 1 {
			t.Fatalf("expected 1 ramp, got %d", yardStore.cfg.TotalRampas())
		}
	})

	t.Run("bloqueio toggles and gates allocation", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodPost, "/v1/rampas/bloqueio", `{"rampa":1,"galpao":1}`)
		if err := h.ToggleBloqueio(c); err != nil {
			t.Fatalf("ToggleBloqueio: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp struct {
			Bloqueada bool `json:"bloqueada"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if !resp.Bloqueada {
			t.Fatal("expected ramp blocked")
		}
	})
}
