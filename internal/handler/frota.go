package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/repository"
	"github.com/cegyard/dock-scheduler/internal/yard"
)

// FrotaStore is the slice of the fleet repository the handlers need.
type FrotaStore interface {
	List(ctx context.Context) ([]model.Frota, error)
	Get(ctx context.Context, id uint64) (model.Frota, error)
	Create(ctx context.Context, numero string) (model.Frota, error)
	Update(ctx context.Context, f model.Frota) error
	UpdateAll(ctx context.Context, frotas []model.Frota) error
	Delete(ctx context.Context, id uint64) error
}

// YardStore persists the grid configuration and ramp blocks.
type YardStore interface {
	Config(ctx context.Context) (model.YardConfig, error)
	SetConfig(ctx context.Context, cfg model.YardConfig) error
	Blocks(ctx context.Context) ([]model.RampaBloqueada, error)
	ReplaceBlocks(ctx context.Context, blocks []model.RampaBloqueada) error
}

// FrotaHandler serves the fleet lifecycle and the ramp grid.
type FrotaHandler struct {
	Frotas FrotaStore
	Yard   YardStore
	Log    *logrus.Logger
}

func NewFrotaHandler(frotas FrotaStore, yardStore YardStore, log *logrus.Logger) *FrotaHandler {
	return &FrotaHandler{Frotas: frotas, Yard: yardStore, Log: log}
}

// ----- DTOs -----

type createFrotaReq struct {
	Numero string `json:"numero"`
}

type alocarReq struct {
	Rampa  int `json:"rampa"`
	Galpao int `json:"galpao"`
}

type bloqueioReq struct {
	Rampa  int `json:"rampa"`
	Galpao int `json:"galpao"`
}

type yardConfigReq struct {
	Vaos         int `json:"vaos"`
	RampasPorVao int `json:"rampas_por_vao"`
}

// rampCell is one slot of the grid view.
type rampCell struct {
	Rampa     int          `json:"rampa"`
	Galpao    int          `json:"galpao"`
	Bloqueada bool         `json:"bloqueada"`
	Frota     *model.Frota `json:"frota,omitempty"`
}

// List returns every fleet vehicle.
func (h *FrotaHandler) List(c echo.Context) error {
	frotas, err := h.Frotas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list frotas failed"})
	}
	if frotas == nil {
		frotas = []model.Frota{}
	}
	return c.JSON(http.StatusOK, frotas)
}

// Create registers a vehicle; it starts waiting in the yard.
func (h *FrotaHandler) Create(c echo.Context) error {
	var req createFrotaReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Numero) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "numero required"})
	}
	f, err := h.Frotas.Create(c.Request().Context(), strings.TrimSpace(req.Numero))
	if err != nil {
		if errors.Is(err, repository.ErrFrotaExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "frota already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create frota failed"})
	}
	return c.JSON(http.StatusCreated, f)
}

// Delete unregisters a vehicle that is not currently on a ramp.
func (h *FrotaHandler) Delete(c echo.Context) error {
	id, err := frotaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	f, err := h.Frotas.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFrotaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "frota not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load frota failed"})
	}
	if f.Status == model.FrotaRampa {
		return c.JSON(http.StatusConflict, echo.Map{"error": "frota is on a ramp"})
	}
	if err := h.Frotas.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete frota failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Alocar moves a waiting vehicle onto a free, unblocked ramp.
func (h *FrotaHandler) Alocar(c echo.Context) error {
	id, err := frotaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req alocarReq
	if err := c.Bind(&req); err != nil || req.Rampa < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rampa/galpao required"})
	}

	ctx := c.Request().Context()
	frotas, blocks, cfg, err := h.loadYard(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load yard failed"})
	}
	galpao := req.Galpao
	if galpao == 0 {
		galpao = cfg.GalpaoDaRampa(req.Rampa)
	}

	next, err := yard.Alocar(frotas, blocks, cfg, id, req.Rampa, galpao)
	if err != nil {
		return h.yardError(c, err)
	}
	if err := h.Frotas.UpdateAll(ctx, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save frotas failed"})
	}
	return c.JSON(http.StatusOK, findFrota(next, id))
}

// ToggleCarregada flips the loaded flag of a vehicle on a ramp.
func (h *FrotaHandler) ToggleCarregada(c echo.Context) error {
	id, err := frotaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	frotas, err := h.Frotas.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list frotas failed"})
	}
	next, carregada, err := yard.ToggleCarregada(frotas, id)
	if err != nil {
		return h.yardError(c, err)
	}
	if err := h.Frotas.UpdateAll(ctx, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save frotas failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "carregada": carregada})
}

// Finalizar dispatches a loaded vehicle, freeing its ramp.
func (h *FrotaHandler) Finalizar(c echo.Context) error {
	id, err := frotaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	frotas, err := h.Frotas.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list frotas failed"})
	}
	next, err := yard.Finalizar(frotas, id)
	if err != nil {
		return h.yardError(c, err)
	}
	if err := h.Frotas.UpdateAll(ctx, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save frotas failed"})
	}
	return c.JSON(http.StatusOK, findFrota(next, id))
}

// Remover sends an unloaded vehicle from its ramp back to the yard.
func (h *FrotaHandler) Remover(c echo.Context) error {
	id, err := frotaID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	frotas, err := h.Frotas.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list frotas failed"})
	}
	next, err := yard.Remover(frotas, id)
	if err != nil {
		return h.yardError(c, err)
	}
	if err := h.Frotas.UpdateAll(ctx, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save frotas failed"})
	}
	return c.JSON(http.StatusOK, findFrota(next, id))
}

// Grid returns the full ramp grid with occupancy and blocks.
func (h *FrotaHandler) Grid(c echo.Context) error {
	ctx := c.Request().Context()
	frotas, blocks, cfg, err := h.loadYard(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load yard failed"})
	}
	cells := make([]rampCell, 0, cfg.TotalRampas())
	for r := 1; r <= cfg.TotalRampas(); r++ {
		g := cfg.GalpaoDaRampa(r)
		cells = append(cells, rampCell{
			Rampa:     r,
			Galpao:    g,
			Bloqueada: yard.IsBlocked(blocks, r, g),
			Frota:     yard.OccupiedBy(frotas, r, g),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"config": cfg,
		"rampas": cells,
	})
}

// ToggleBloqueio flips the block flag of one ramp.
func (h *FrotaHandler) ToggleBloqueio(c echo.Context) error {
	var req bloqueioReq
	if err := c.Bind(&req); err != nil || req.Rampa < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rampa/galpao required"})
	}
	ctx := c.Request().Context()
	cfg, err := h.Yard.Config(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load yard failed"})
	}
	galpao := req.Galpao
	if galpao == 0 {
		galpao = cfg.GalpaoDaRampa(req.Rampa)
	}
	if !cfg.Contains(req.Rampa, galpao) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "rampa outside the grid"})
	}
	blocks, err := h.Yard.Blocks(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load yard failed"})
	}
	next, blocked := yard.ToggleBloqueio(blocks, req.Rampa, galpao)
	if err := h.Yard.ReplaceBlocks(ctx, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save blocks failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rampa": req.Rampa, "galpao": galpao, "bloqueada": blocked})
}

// Reconfigure resizes the grid, renumbering every allocated vehicle's
// ramp to its new position and evicting vehicles that no longer fit.
func (h *FrotaHandler) Reconfigure(c echo.Context) error {
	var req yardConfigReq
	if err := c.Bind(&req); err != nil || req.Vaos < 1 || req.RampasPorVao < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vaos/rampas_por_vao must be positive"})
	}
	ctx := c.Request().Context()
	frotas, blocks, _, err := h.loadYard(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load yard failed"})
	}
	nextCfg := model.YardConfig{Vaos: req.Vaos, RampasPorVao: req.RampasPorVao}
	nextFrotas, nextBlocks := yard.Reconfigure(frotas, blocks, nextCfg)

	if err := h.Yard.SetConfig(ctx, nextCfg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save config failed"})
	}
	if err := h.Frotas.UpdateAll(ctx, nextFrotas); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save frotas failed"})
	}
	if err := h.Yard.ReplaceBlocks(ctx, nextBlocks); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save blocks failed"})
	}
	h.Log.WithFields(logrus.Fields{"vaos": req.Vaos, "rampas_por_vao": req.RampasPorVao}).Info("yard reconfigured")
	return c.JSON(http.StatusOK, echo.Map{"config": nextCfg})
}

// YardStats summarizes grid occupancy.
func (h *FrotaHandler) YardStats(c echo.Context) error {
	ctx := c.Request().Context()
	frotas, blocks, cfg, err := h.loadYard(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load yard failed"})
	}
	return c.JSON(http.StatusOK, yard.Summarize(frotas, blocks, cfg))
}

// ----- helpers -----

func (h *FrotaHandler) loadYard(ctx context.Context) ([]model.Frota, []model.RampaBloqueada, model.YardConfig, error) {
	frotas, err := h.Frotas.List(ctx)
	if err != nil {
		return nil, nil, model.YardConfig{}, err
	}
	blocks, err := h.Yard.Blocks(ctx)
	if err != nil {
		return nil, nil, model.YardConfig{}, err
	}
	cfg, err := h.Yard.Config(ctx)
	if err != nil {
		return nil, nil, model.YardConfig{}, err
	}
	return frotas, blocks, cfg, nil
}

func (h *FrotaHandler) yardError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, yard.ErrFrotaNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "frota not found"})
	case errors.Is(err, yard.ErrPrecondition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "yard operation failed"})
	}
}

func frotaID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func findFrota(frotas []model.Frota, id uint64) *model.Frota {
	for i := range frotas {
		if frotas[i].ID == id {
			return &frotas[i]
		}
	}
	return nil
}
