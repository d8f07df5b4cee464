package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cegyard/dock-scheduler/internal/kvstore"
)

// PreferenciaHandler stores per-operator board preferences (filters,
// sound alerts, column layout) for the duration of a working shift.
// Entries live in the session scope of the key-value store, so an
// operator starts the next shift from the defaults.
type PreferenciaHandler struct {
	Store kvstore.Store
}

func NewPreferenciaHandler(store kvstore.Store) *PreferenciaHandler {
	return &PreferenciaHandler{Store: store}
}

func prefKey(c echo.Context) string {
	username, _ := c.Get("username").(string)
	if username == "" {
		username = "anon"
	}
	return "prefs:" + username
}

// Get returns the caller's saved preferences, or an empty object when
// none were saved this shift.
func (h *PreferenciaHandler) Get(c echo.Context) error {
	raw, err := h.Store.Get(c.Request().Context(), kvstore.ScopeSession, prefKey(c))
	if errors.Is(err, kvstore.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load preferencias failed"})
	}
	return c.JSONBlob(http.StatusOK, []byte(raw))
}

// Put replaces the caller's preferences with the given JSON object.
func (h *PreferenciaHandler) Put(c echo.Context) error {
	var prefs map[string]any
	if err := c.Bind(&prefs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Store.Set(c.Request().Context(), kvstore.ScopeSession, prefKey(c), string(raw)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save preferencias failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Reset drops the caller's saved preferences.
func (h *PreferenciaHandler) Reset(c echo.Context) error {
	if err := h.Store.Delete(c.Request().Context(), kvstore.ScopeSession, prefKey(c)); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset preferencias failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
