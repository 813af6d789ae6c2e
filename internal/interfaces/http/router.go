package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/admin"
	"github.com/jhoicas/Facturador-api/internal/application/auth"
	"github.com/jhoicas/Facturador-api/internal/application/history"
	"github.com/jhoicas/Facturador-api/internal/application/session"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	HistoryUC     *history.UseCase
	SessionRouter *session.Router
	DirectoryUC   *admin.DirectoryUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login público; el alta de cuentas la hace un admin autenticado
	// y el rol resultante siempre es user.
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), RequireAdmin(), authHandler.Register)

	// Sesión: la resolución acepta peticiones sin token (modo logged_out).
	sessionHandler := NewSessionHandler(deps.SessionRouter, deps.JWTSecret)
	api.Get("/session", sessionHandler.Resolve)
	api.Post("/session/logout", AuthMiddleware(deps.JWTSecret), sessionHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Borrador de trabajo y su autoguardado
	drafts := protected.Group("/draft")
	draftHandler := NewDraftHandler(deps.SessionRouter)
	drafts.Put("/", draftHandler.Push)
	drafts.Get("/status", draftHandler.Status)
	drafts.Post("/flush", draftHandler.Flush)

	// Historial de facturas guardadas
	histGroup := protected.Group("/history")
	historyHandler := NewHistoryHandler(deps.HistoryUC)
	histGroup.Post("/", historyHandler.Save)
	histGroup.Get("/", historyHandler.List)
	histGroup.Get("/:id", historyHandler.Load)
	histGroup.Get("/:id/pdf", historyHandler.RenderPDF)
	histGroup.Delete("/:id", historyHandler.Delete)

	// Directorio de cuentas y edición delegada (solo admin)
	adminGroup := protected.Group("/admin", RequireAdmin())
	adminHandler := NewAdminHandler(deps.DirectoryUC, deps.SessionRouter)
	adminGroup.Get("/accounts", adminHandler.ListAccounts)
	adminGroup.Get("/accounts/:id/history", adminHandler.AccountHistory)
	adminGroup.Delete("/accounts/:id", adminHandler.DeleteAccount)
	adminGroup.Post("/override", adminHandler.EnterOverride)
	adminGroup.Put("/override/:sid/document", adminHandler.PushOverride)
	adminGroup.Post("/override/:sid/save", adminHandler.SaveOverride)
	adminGroup.Get("/override/:sid/status", adminHandler.OverrideStatus)
	adminGroup.Delete("/override/:sid", adminHandler.ExitOverride)
}
