package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/queue"
	"github.com/cegyard/dock-scheduler/internal/repository"
	"github.com/cegyard/dock-scheduler/internal/slot"
	"github.com/cegyard/dock-scheduler/internal/validate"
)

// CargaStore is the slice of the carga repository the handlers need.
type CargaStore interface {
	List(ctx context.Context) ([]model.Carga, error)
	Get(ctx context.Context, id string) (model.Carga, error)
	GetByViagem(ctx context.Context, viagem string) (model.Carga, error)
	Create(ctx context.Context, c *model.Carga) error
	Update(ctx context.Context, id string, c model.Carga) error
	Delete(ctx context.Context, id string) error
}

// ChangeLog records every accepted mutation of the load collection.
type ChangeLog interface {
	Append(ctx context.Context, tipo, dados string) (model.Alteracao, error)
	List(ctx context.Context) ([]model.Alteracao, error)
	Clear(ctx context.Context) error
}

// CargaHandler serves the load board: records, per-field edits,
// conflicts, slot catalog and occupation checks.
type CargaHandler struct {
	Cargas  CargaStore
	Changes ChangeLog
	Log     *logrus.Logger

	// Publish forwards a change event to the broker. Swapped out in
	// tests; failures never fail the request.
	Publish func(ctx context.Context, ev queue.CargaChangedEvent)

	OccupationLimit time.Duration
}

func NewCargaHandler(cargas CargaStore, changes ChangeLog, log *logrus.Logger, publish func(ctx context.Context, ev queue.CargaChangedEvent), limit time.Duration) *CargaHandler {
	if limit <= 0 {
		limit = slot.DefaultOccupationLimit
	}
	if publish == nil {
		publish = func(context.Context, queue.CargaChangedEvent) {}
	}
	return &CargaHandler{Cargas: cargas, Changes: changes, Log: log, Publish: publish, OccupationLimit: limit}
}

// ----- DTOs -----

type createCargaReq struct {
	Hora   string `json:"HORA"`
	Viagem string `json:"VIAGEM"`
	Frota  string `json:"FROTA"`
	Prebox string `json:"PREBOX"`
	BoxD   string `json:"BOX-D"`
	Status string `json:"status"`
}

type fieldEditReq struct {
	Campo string `json:"campo"`
	Valor string `json:"valor"`
}

type cargaMutationResp struct {
	Carga     model.Carga        `json:"carga"`
	Warnings  []validate.Warning `json:"warnings,omitempty"`
	Conflicts []slot.Conflict    `json:"conflitos,omitempty"`
}

// List returns every load record.
func (h *CargaHandler) List(c echo.Context) error {
	cargas, err := h.Cargas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cargas failed"})
	}
	if cargas == nil {
		cargas = []model.Carga{}
	}
	return c.JSON(http.StatusOK, cargas)
}

// Get returns one record by id.
func (h *CargaHandler) Get(c echo.Context) error {
	carga, err := h.Cargas.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCargaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "carga not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load carga failed"})
	}
	return c.JSON(http.StatusOK, carga)
}

// Create validates each provided field and inserts the record. New
// records default to LIVRE and to the current clock time when HORA is
// omitted; assigning a BOX-D on creation follows the same status rule
// as an edit.
func (h *CargaHandler) Create(c echo.Context) error {
	var req createCargaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	carga := model.Carga{Status: model.StatusLivre}
	var warnings []validate.Warning
	edits := []struct{ field, value string }{
		{validate.FieldHora, defaultHora(req.Hora)},
		{validate.FieldViagem, req.Viagem},
		{validate.FieldFrota, req.Frota},
		{validate.FieldPrebox, req.Prebox},
		{validate.FieldStatus, defaultStatus(req.Status)},
		{validate.FieldBoxD, req.BoxD},
	}
	for _, e := range edits {
		next, warn, err := validate.ApplyFieldEdit(carga, e.field, e.value)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "campo": e.field})
		}
		carga = next
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	ctx := c.Request().Context()
	if err := h.Cargas.Create(ctx, &carga); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create carga failed"})
	}
	h.recordChange(ctx, c, model.AlteracaoCriacao, carga, "", "")

	return c.JSON(http.StatusCreated, cargaMutationResp{
		Carga:     carga,
		Warnings:  warnings,
		Conflicts: h.conflictsAfterMutation(ctx),
	})
}

// EditField applies one validated field edit to a record. Rejected
// values leave the record untouched and report 422; advisory warnings
// come back alongside the accepted record. Conflicts are recomputed
// whenever the dock slot is involved.
func (h *CargaHandler) EditField(c echo.Context) error {
	var req fieldEditReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Campo) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "campo required"})
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	carga, err := h.Cargas.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCargaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "carga not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load carga failed"})
	}

	next, warn, err := validate.ApplyFieldEdit(carga, req.Campo, req.Valor)
	if err != nil {
		resp := echo.Map{"error": err.Error(), "campo": req.Campo}
		// A rejected slot edit still reports the current conflicts.
		if strings.EqualFold(strings.TrimSpace(req.Campo), validate.FieldBoxD) {
			resp["conflitos"] = h.conflictsAfterMutation(ctx)
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}

	if err := h.Cargas.Update(ctx, id, next); err != nil {
		if errors.Is(err, repository.ErrCargaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "carga not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update carga failed"})
	}
	h.recordChange(ctx, c, model.AlteracaoAtualizacao, next, req.Campo, req.Valor)

	resp := cargaMutationResp{Carga: next}
	if warn != nil {
		resp.Warnings = []validate.Warning{*warn}
	}
	if strings.EqualFold(strings.TrimSpace(req.Campo), validate.FieldBoxD) {
		resp.Conflicts = h.conflictsAfterMutation(ctx)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete removes a record and logs the exclusion.
func (h *CargaHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	carga, err := h.Cargas.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCargaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "carga not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load carga failed"})
	}
	if err := h.Cargas.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete carga failed"})
	}
	h.recordChange(ctx, c, model.AlteracaoExclusao, carga, "", "")
	return c.NoContent(http.StatusNoContent)
}

// Conflicts lists every dock slot claimed by two or more active trips.
func (h *CargaHandler) Conflicts(c echo.Context) error {
	cargas, err := h.Cargas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cargas failed"})
	}
	conflicts := slot.FindConflicts(cargas)
	if conflicts == nil {
		conflicts = []slot.Conflict{}
	}
	return c.JSON(http.StatusOK, conflicts)
}

// Slots returns the full addressable catalog split into occupied and
// free, with non-standard identifiers listed separately.
func (h *CargaHandler) Slots(c echo.Context) error {
	cargas, err := h.Cargas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cargas failed"})
	}
	occupied := slot.OccupiedSlots(cargas)
	occupiedList := make([]string, 0, len(occupied))
	for _, s := range slot.AllSlots(cargas) {
		if _, ok := occupied[s]; ok {
			occupiedList = append(occupiedList, s)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"todos":    slot.AllSlots(cargas),
		"ocupados": occupiedList,
		"livres":   slot.FreeSlots(cargas),
		"extras":   slot.ExtraSlots(cargas),
	})
}

// Stats returns per-status counts and the slot split for dashboards.
func (h *CargaHandler) Stats(c echo.Context) error {
	cargas, err := h.Cargas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cargas failed"})
	}
	counts := map[string]int{
		model.StatusLivre:    0,
		model.StatusParcial:  0,
		model.StatusCompleto: 0,
		model.StatusJaFoi:    0,
	}
	for _, cg := range cargas {
		if _, ok := counts[cg.Status]; ok {
			counts[cg.Status]++
		}
	}
	occupied := slot.OccupiedSlots(cargas)
	return c.JSON(http.StatusOK, echo.Map{
		"total":          len(cargas),
		"por_status":     counts,
		"boxes_ocupados": len(occupied),
		"boxes_livres":   len(slot.FreeSlots(cargas)),
		"conflitos":      len(slot.FindConflicts(cargas)),
	})
}

// Occupation runs the advisory dock-occupation check on demand.
func (h *CargaHandler) Occupation(c echo.Context) error {
	cargas, err := h.Cargas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cargas failed"})
	}
	overstays := slot.FindOverstays(cargas, time.Now(), h.OccupationLimit)
	if overstays == nil {
		overstays = []slot.Overstay{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"limite_horas": h.OccupationLimit.Hours(),
		"excedidas":    overstays,
	})
}

// ----- helpers -----

func defaultStatus(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.StatusLivre
	}
	return s
}

func defaultHora(s string) string {
	if strings.TrimSpace(s) == "" {
		return time.Now().Format("15:04")
	}
	return s
}

// recordChange appends the audit entry and publishes the broker event.
// Both are best-effort: a broken change log or broker never rolls back
// an accepted mutation.
func (h *CargaHandler) recordChange(ctx context.Context, c echo.Context, tipo string, carga model.Carga, campo, valor string) {
	dados, err := json.Marshal(carga)
	if err != nil {
		dados = []byte("{}")
	}
	if _, err := h.Changes.Append(ctx, tipo, string(dados)); err != nil {
		h.Log.WithError(err).Warn("change log append failed")
	}
	usuario, _ := c.Get("username").(string)
	h.Publish(ctx, queue.CargaChangedEvent{
		CargaID:   carga.ID,
		Viagem:    carga.Viagem,
		Tipo:      tipo,
		Campo:     campo,
		Valor:     valor,
		Usuario:   usuario,
		OcorreuEm: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *CargaHandler) conflictsAfterMutation(ctx context.Context) []slot.Conflict {
	cargas, err := h.Cargas.List(ctx)
	if err != nil {
		h.Log.WithError(err).Warn("conflict recompute failed")
		return nil
	}
	return slot.FindConflicts(cargas)
}
