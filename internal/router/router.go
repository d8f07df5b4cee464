package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/cegyard/dock-scheduler/internal/handler"
	"github.com/cegyard/dock-scheduler/internal/middleware"
	"github.com/cegyard/dock-scheduler/internal/model"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Cargas       *handler.CargaHandler
	Frotas       *handler.FrotaHandler
	Alteracoes   *handler.AlteracaoHandler
	Agendamentos *handler.AgendamentoHandler
	Fila         *handler.FilaHandler
	Preferencias *handler.PreferenciaHandler
}

// RegisterRoutes registers the unauthenticated routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Register, login, refresh
// and logout live under /v1/auth and need no session; /v1/me requires
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleOperator, model.RoleAdmin))
	auth.GET("/me", a.Me)
}

// RegisterAPI registers the scheduling API. Every route requires an
// authenticated operator; grid reconfiguration and change-log clearing
// additionally require the admin role.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, extra ...echo.MiddlewareFunc) {
	api := e.Group("/v1")
	api.Use(middleware.JWTAuth(jwtSecret))
	api.Use(middleware.RequireRole(model.RoleOperator, model.RoleAdmin))
	for _, m := range extra {
		api.Use(m)
	}

	// Load board
	api.GET("/cargas", h.Cargas.List)
	api.POST("/cargas", h.Cargas.Create)
	api.GET("/cargas/conflitos", h.Cargas.Conflicts)
	api.GET("/cargas/boxes", h.Cargas.Slots)
	api.GET("/cargas/stats", h.Cargas.Stats)
	api.GET("/cargas/ocupacao", h.Cargas.Occupation)
	api.POST("/cargas/import", h.Cargas.Import)
	api.GET("/cargas/export", h.Cargas.Export)
	api.GET("/cargas/:id", h.Cargas.Get)
	api.PATCH("/cargas/:id/campo", h.Cargas.EditField)
	api.DELETE("/cargas/:id", h.Cargas.Delete)

	// Fleet lifecycle
	api.GET("/frotas", h.Frotas.List)
	api.POST("/frotas", h.Frotas.Create)
	api.DELETE("/frotas/:id", h.Frotas.Delete)
	api.POST("/frotas/:id/alocar", h.Frotas.Alocar)
	api.POST("/frotas/:id/carregada", h.Frotas.ToggleCarregada)
	api.POST("/frotas/:id/finalizar", h.Frotas.Finalizar)
	api.POST("/frotas/:id/remover", h.Frotas.Remover)

	// Ramp grid
	api.GET("/rampas", h.Frotas.Grid)
	api.GET("/rampas/stats", h.Frotas.YardStats)
	api.POST("/rampas/bloqueio", h.Frotas.ToggleBloqueio)

	// Fleet waiting queue
	api.GET("/fila", h.Fila.List)
	api.POST("/fila", h.Fila.Push)
	api.DELETE("/fila/:numero", h.Fila.Remove)

	// Scheduling entries
	api.GET("/agendamentos", h.Agendamentos.List)
	api.POST("/agendamentos", h.Agendamentos.Create)
	api.PUT("/agendamentos/:id", h.Agendamentos.Update)
	api.DELETE("/agendamentos/:id", h.Agendamentos.Delete)

	// Per-operator shift preferences
	api.GET("/preferencias", h.Preferencias.Get)
	api.PUT("/preferencias", h.Preferencias.Put)
	api.DELETE("/preferencias", h.Preferencias.Reset)

	// Change log
	api.GET("/alteracoes", h.Alteracoes.List)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.PUT("/rampas/config", h.Frotas.Reconfigure)
	admin.DELETE("/alteracoes", h.Alteracoes.Clear)
}
