package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/queue"
	"github.com/cegyard/dock-scheduler/internal/repository"
)

// memCargaStore is an in-memory CargaStore for handler tests.
type memCargaStore struct {
	cargas []model.Carga
	nextID int
}

func (s *memCargaStore) List(context.Context) ([]model.Carga, error) {
	out := make([]model.Carga, len(s.cargas))
	copy(out, s.cargas)
	return out, nil
}

func (s *memCargaStore) Get(_ context.Context, id string) (model.Carga, error) {
	for _, c := range s.cargas {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Carga{}, repository.ErrCargaNotFound
}

func (s *memCargaStore) GetByViagem(_ context.Context, viagem string) (model.Carga, error) {
	for _, c := range s.cargas {
		if c.Viagem == viagem {
			return c, nil
		}
	}
	return model.Carga{}, repository.ErrCargaNotFound
}

func (s *memCargaStore) Create(_ context.Context, c *model.Carga) error {
	if c.ID == "" {
		s.nextID++
		c.ID = "carga-" + string(rune('0'+s.nextID))
	}
	s.cargas = append(s.cargas, *c)
	return nil
}

func (s *memCargaStore) Update(_ context.Context, id string, c model.Carga) error {
	for i := range s.cargas {
		if s.cargas[i].ID == id {
			c.ID = id
			s.cargas[i] = c
			return nil
		}
	}
	return repository.ErrCargaNotFound
}

func (s *memCargaStore) Delete(_ context.Context, id string) error {
	for i := range s.cargas {
		if s.cargas[i].ID == id {
			s.cargas = append(s.cargas[:i], s.cargas[i+1:]...)
			return nil
		}
	}
	return repository.ErrCargaNotFound
}

// memChangeLog records appended entries.
type memChangeLog struct {
	entries []model.Alteracao
}

func (l *memChangeLog) Append(_ context.Context, tipo, dados string) (model.Alteracao, error) {
	e := model.Alteracao{ID: "a", Tipo: tipo, Dados: dados, Timestamp: time.Now()}
	l.entries = append(l.entries, e)
	return e, nil
}

func (l *memChangeLog) List(context.Context) ([]model.Alteracao, error) { return l.entries, nil }
func (l *memChangeLog) Clear(context.Context) error                    { l.entries = nil; return nil }

func newCargaTestHandler(store *memCargaStore) (*CargaHandler, *memChangeLog, *[]queue.CargaChangedEvent) {
	changes := &memChangeLog{}
	var published []queue.CargaChangedEvent
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewCargaHandler(store, changes, log, func(_ context.Context, ev queue.CargaChangedEvent) {
		published = append(published, ev)
	}, 4*time.Hour)
	return h, changes, &published
}

func doJSON(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, echo.Context) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestCargaCreate(t *testing.T) {
	e := echo.New()

	t.Run("defaults to LIVRE", func(t *testing.T) {
		store := &memCargaStore{}
		h, changes, published := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas", `{"VIAGEM":"7001","FROTA":"F-10"}`)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp cargaMutationResp
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Carga.Status != model.StatusLivre {
			t.Fatalf("expected LIVRE, got %s", resp.Carga.Status)
		}
		if len(changes.entries) != 1 || changes.entries[0].Tipo != model.AlteracaoCriacao {
			t.Fatalf("expected one criacao entry, got %+v", changes.entries)
		}
		if len(*published) != 1 || (*published)[0].Tipo != model.AlteracaoCriacao {
			t.Fatalf("expected one published event, got %+v", *published)
		}
	})

	t.Run("omitted hora defaults to current clock time", func(t *testing.T) {
		store := &memCargaStore{}
		h, _, _ := newCargaTestHandler(store)
		before := time.Now().Format("15:04")
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas", `{"VIAGEM":"7005"}`)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		after := time.Now().Format("15:04")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp cargaMutationResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Carga.Hora != before && resp.Carga.Hora != after {
			t.Fatalf("expected current clock time, got %q", resp.Carga.Hora)
		}
	})

	t.Run("explicit hora is kept", func(t *testing.T) {
		store := &memCargaStore{}
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas", `{"VIAGEM":"7006","HORA":"0815"}`)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		var resp cargaMutationResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Carga.Hora != "08:15" {
			t.Fatalf("expected 08:15, got %q", resp.Carga.Hora)
		}
	})

	t.Run("boxd on create forces PARCIAL", func(t *testing.T) {
		store := &memCargaStore{}
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas", `{"VIAGEM":"7002","BOX-D":"12"}`)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		var resp cargaMutationResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Carga.Status != model.StatusParcial {
			t.Fatalf("expected PARCIAL, got %s", resp.Carga.Status)
		}
	})

	t.Run("out-of-range prebox warns but is kept", func(t *testing.T) {
		store := &memCargaStore{}
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas", `{"VIAGEM":"7003","PREBOX":"999"}`)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var resp cargaMutationResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Carga.Prebox != "999" {
			t.Fatalf("expected prebox kept, got %q", resp.Carga.Prebox)
		}
		if len(resp.Warnings) != 1 {
			t.Fatalf("expected one warning, got %+v", resp.Warnings)
		}
	})
}

func TestCargaEditField(t *testing.T) {
	e := echo.New()

	seed := func() *memCargaStore {
		return &memCargaStore{cargas: []model.Carga{
			{ID: "c1", Viagem: "7001", Status: model.StatusLivre},
			{ID: "c2", Viagem: "7002", BoxD: "5", Status: model.StatusParcial},
		}}
	}

	t.Run("boxd edit reports new conflicts", func(t *testing.T) {
		store := seed()
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPatch, "/v1/cargas/c1/campo", `{"campo":"BOX-D","valor":"5"}`)
		c.SetParamNames("id")
		c.SetParamValues("c1")
		if err := h.EditField(c); err != nil {
			t.Fatalf("EditField: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp cargaMutationResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Carga.Status != model.StatusParcial {
			t.Fatalf("expected PARCIAL after slot assignment, got %s", resp.Carga.Status)
		}
		if len(resp.Conflicts) != 1 || resp.Conflicts[0].BoxD != "5" {
			t.Fatalf("expected conflict on box 5, got %+v", resp.Conflicts)
		}
		if len(resp.Conflicts[0].Viagens) != 2 {
			t.Fatalf("expected two claimants, got %+v", resp.Conflicts[0].Viagens)
		}
	})

	t.Run("invalid boxd rejected with 422", func(t *testing.T) {
		store := seed()
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPatch, "/v1/cargas/c1/campo", `{"campo":"BOX-D","valor":"12 A"}`)
		c.SetParamNames("id")
		c.SetParamValues("c1")
		if err := h.EditField(c); err != nil {
			t.Fatalf("EditField: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		got, _ := store.Get(context.Background(), "c1")
		if got.BoxD != "" || got.Status != model.StatusLivre {
			t.Fatalf("record should be untouched, got %+v", got)
		}
	})

	t.Run("hora digits are reformatted", func(t *testing.T) {
		store := seed()
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPatch, "/v1/cargas/c1/campo", `{"campo":"HORA","valor":"1234"}`)
		c.SetParamNames("id")
		c.SetParamValues("c1")
		if err := h.EditField(c); err != nil {
			t.Fatalf("EditField: %v", err)
		}
		var resp cargaMutationResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Carga.Hora != "12:34" {
			t.Fatalf("expected 12:34, got %q", resp.Carga.Hora)
		}
	})

	t.Run("unknown record is 404", func(t *testing.T) {
		store := seed()
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodPatch, "/v1/cargas/nope/campo", `{"campo":"HORA","valor":"10:00"}`)
		c.SetParamNames("id")
		c.SetParamValues("nope")
		if err := h.EditField(c); err != nil {
			t.Fatalf("EditField: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCargaDelete(t *testing.T) {
	e := echo.New()
	store := &memCargaStore{cargas: []model.Carga{{ID: "c1", Viagem: "7001", Status: model.StatusLivre}}}
	h, changes, published := newCargaTestHandler(store)

	rec, c := doJSON(e, http.MethodDelete, "/v1/cargas/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(store.cargas) != 0 {
		t.Fatalf("expected empty store, got %+v", store.cargas)
	}
	if len(changes.entries) != 1 || changes.entries[0].Tipo != model.AlteracaoExclusao {
		t.Fatalf("expected exclusao entry, got %+v", changes.entries)
	}
	if len(*published) != 1 {
		t.Fatalf("expected one event, got %+v", *published)
	}
}

func TestCargaImportExport(t *testing.T) {
	e := echo.New()

	t.Run("import matches by viagem", func(t *testing.T) {
		store := &memCargaStore{cargas: []model.Carga{{ID: "c1", Viagem: "7001", Status: model.StatusLivre}}}
		h, _, _ := newCargaTestHandler(store)
		body := `[{"VIAGEM":"7001","BOX-D":"9"},{"VIAGEM":"7002","HORA":"0830"}]`
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas/import", body)
		if err := h.Import(c); err != nil {
			t.Fatalf("Import: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp importResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Criadas != 1 || resp.Atualizadas != 1 || len(resp.Falhas) != 0 {
			t.Fatalf("expected 1 created / 1 updated, got %+v", resp)
		}
		updated, _ := store.GetByViagem(context.Background(), "7001")
		if updated.BoxD != "9" || updated.Status != model.StatusParcial {
			t.Fatalf("expected updated record with box 9 PARCIAL, got %+v", updated)
		}
	})

	t.Run("bad rows are reported, good ones land", func(t *testing.T) {
		store := &memCargaStore{}
		h, _, _ := newCargaTestHandler(store)
		body := `[{"VIAGEM":"8001","BOX-D":"not a box!"},{"VIAGEM":"8002"}]`
		rec, c := doJSON(e, http.MethodPost, "/v1/cargas/import", body)
		if err := h.Import(c); err != nil {
			t.Fatalf("Import: %v", err)
		}
		var resp importResp
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Criadas != 1 || len(resp.Falhas) != 1 {
			t.Fatalf("expected 1 created / 1 failure, got %+v", resp)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 when some rows land, got %d", rec.Code)
		}
	})

	t.Run("export writes csv header", func(t *testing.T) {
		store := &memCargaStore{cargas: []model.Carga{{ID: "c1", Hora: "08:30", Viagem: "7001", Status: model.StatusLivre}}}
		h, _, _ := newCargaTestHandler(store)
		rec, c := doJSON(e, http.MethodGet, "/v1/cargas/export", "")
		if err := h.Export(c); err != nil {
			t.Fatalf("Export: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.HasPrefix(body, "HORA,VIAGEM,FROTA,PREBOX,BOX-D,status") {
			t.Fatalf("unexpected header: %q", body)
		}
		if !strings.Contains(body, "08:30,7001") {
			t.Fatalf("expected record row, got %q", body)
		}
	})
}

func TestCargaSlotsAndStats(t *testing.T) {
	e := echo.New()
	store := &memCargaStore{cargas: []model.Carga{
		{ID: "c1", Viagem: "1", BoxD: "3", Status: model.StatusParcial},
		{ID: "c2", Viagem: "2", BoxD: "3", Status: model.StatusCompleto},
		{ID: "c3", Viagem: "3", BoxD: "7", Status: model.StatusJaFoi},
	}}
	h, _, _ := newCargaTestHandler(store)

	t.Run("slots split free and occupied", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodGet, "/v1/cargas/boxes", "")
		if err := h.Slots(c); err != nil {
			t.Fatalf("Slots: %v", err)
		}
		var resp struct {
			Ocupados []string `json:"ocupados"`
			Livres   []string `json:"livres"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if len(resp.Ocupados) != 1 || resp.Ocupados[0] != "3" {
			t.Fatalf("expected only box 3 occupied, got %v", resp.Ocupados)
		}
		for _, s := range resp.Livres {
			if s == "3" {
				t.Fatal("occupied slot listed as free")
			}
		}
	})

	t.Run("stats counts conflicts", func(t *testing.T) {
		rec, c := doJSON(e, http.MethodGet, "/v1/cargas/stats", "")
		if err := h.Stats(c); err != nil {
			t.Fatalf("Stats: %v", err)
		}
		var resp struct {
			Total     int `json:"total"`
			Conflitos int `json:"conflitos"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Total != 3 || resp.Conflitos != 1 {
			t.Fatalf("expected total 3 conflitos 1, got %+v", resp)
		}
	})
}
