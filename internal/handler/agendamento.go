package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/repository"
)

// AgendamentoStore is the slice of the bookings repository the
// handlers need.
type AgendamentoStore interface {
	List(ctx context.Context) ([]model.Agendamento, error)
	Get(ctx context.Context, id uint64) (model.Agendamento, error)
	Create(ctx context.Context, a model.Agendamento) (model.Agendamento, error)
	Update(ctx context.Context, a model.Agendamento) error
	Delete(ctx context.Context, id uint64) error
}

// AgendamentoHandler serves the free-form scheduling entries.
type AgendamentoHandler struct {
	Agendamentos AgendamentoStore
	Validate     *validator.Validate
}

func NewAgendamentoHandler(store AgendamentoStore) *AgendamentoHandler {
	return &AgendamentoHandler{Agendamentos: store, Validate: validator.New()}
}

type agendamentoReq struct {
	Titulo    string  `json:"titulo" validate:"required,max=200"`
	Descricao *string `json:"descricao"`
	Data      string  `json:"data" validate:"required"`
	Status    string  `json:"status"`
}

// List returns every scheduling entry.
func (h *AgendamentoHandler) List(c echo.Context) error {
	entries, err := h.Agendamentos.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list agendamentos failed"})
	}
	if entries == nil {
		entries = []model.Agendamento{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Create inserts an entry owned by the authenticated user.
func (h *AgendamentoHandler) Create(c echo.Context) error {
	var req agendamentoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.AgendamentoPendente
	}
	if !model.ValidAgendamentoStatus(status) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status"})
	}

	created, err := h.Agendamentos.Create(c.Request().Context(), model.Agendamento{
		Titulo:    strings.TrimSpace(req.Titulo),
		Descricao: req.Descricao,
		Data:      strings.TrimSpace(req.Data),
		UsuarioID: claimedUserID(c),
		Status:    status,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create agendamento failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces the mutable fields of an entry.
func (h *AgendamentoHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req agendamentoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	existing, err := h.Agendamentos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAgendamentoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "agendamento not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load agendamento failed"})
	}

	existing.Titulo = strings.TrimSpace(req.Titulo)
	existing.Descricao = req.Descricao
	existing.Data = strings.TrimSpace(req.Data)
	if s := strings.ToLower(strings.TrimSpace(req.Status)); s != "" {
		if !model.ValidAgendamentoStatus(s) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status"})
		}
		existing.Status = s
	}

	if err := h.Agendamentos.Update(ctx, existing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update agendamento failed"})
	}
	return c.JSON(http.StatusOK, existing)
}

// Delete removes an entry.
func (h *AgendamentoHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Agendamentos.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrAgendamentoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "agendamento not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete agendamento failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// claimedUserID reads the numeric subject stored by the JWT
// middleware. JWT numbers decode as float64.
func claimedUserID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
