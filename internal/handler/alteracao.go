package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// AlteracaoHandler exposes the change log of the load collection.
type AlteracaoHandler struct {
	Changes ChangeLog
}

func NewAlteracaoHandler(changes ChangeLog) *AlteracaoHandler {
	return &AlteracaoHandler{Changes: changes}
}

// List returns the log, newest first.
func (h *AlteracaoHandler) List(c echo.Context) error {
	entries, err := h.Changes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list alteracoes failed"})
	}
	if entries == nil {
		entries = []model.Alteracao{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Clear wipes the log. Admin only, wired in the router.
func (h *AlteracaoHandler) Clear(c echo.Context) error {
	if err := h.Changes.Clear(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear alteracoes failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
