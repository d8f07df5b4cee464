package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cegyard/dock-scheduler/internal/kvstore"
)

// FilaHandler manages the ordered queue of fleet numbers waiting for
// a ramp, stored durably in the key-value store.
type FilaHandler struct {
	Fila   *kvstore.FleetQueue
	Cargas CargaStore
}

func NewFilaHandler(fila *kvstore.FleetQueue, cargas CargaStore) *FilaHandler {
	return &FilaHandler{Fila: fila, Cargas: cargas}
}

type filaEntry struct {
	Numero string `json:"numero"`
	BoxD   string `json:"boxd,omitempty"`
}

type filaPushReq struct {
	Numero string `json:"numero"`
}

// List returns the queue in order, each entry annotated with the dock
// slot of the matching load record when one exists.
func (h *FilaHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	numeros, err := h.Fila.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list fila failed"})
	}

	boxByFrota := map[string]string{}
	if cargas, err := h.Cargas.List(ctx); err == nil {
		for _, cg := range cargas {
			frota := strings.TrimSpace(cg.Frota)
			if frota != "" && strings.TrimSpace(cg.BoxD) != "" {
				boxByFrota[frota] = strings.TrimSpace(cg.BoxD)
			}
		}
	}

	out := make([]filaEntry, 0, len(numeros))
	for _, n := range numeros {
		out = append(out, filaEntry{Numero: n, BoxD: boxByFrota[n]})
	}
	return c.JSON(http.StatusOK, out)
}

// Push appends a fleet number; duplicates are ignored.
func (h *FilaHandler) Push(c echo.Context) error {
	var req filaPushReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Numero) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "numero required"})
	}
	if err := h.Fila.Push(c.Request().Context(), strings.TrimSpace(req.Numero)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "push fila failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove drops a fleet number from the queue.
func (h *FilaHandler) Remove(c echo.Context) error {
	numero := strings.TrimSpace(c.Param("numero"))
	if numero == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "numero required"})
	}
	if err := h.Fila.Remove(c.Request().Context(), numero); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove fila failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
