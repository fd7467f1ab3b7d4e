package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JulianoPassing/scc-tickets/internal/api/http/handlers"
	"github.com/JulianoPassing/scc-tickets/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Flags          *handlers.FlagsHandler
	Transcripts    *handlers.TranscriptsHandler
	Uploads        *handlers.UploadsHandler
	Staff          *handlers.StaffHandler
	Interactions   *handlers.InteractionsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Signature-verified webhook; no session auth.
	app.Post("/discord/interactions", cfg.Interactions.Handle)

	app.Get("/categories", cfg.Tickets.ListCategories)

	authGroup := app.Group("/auth")
	authGroup.Get("/discord/login", cfg.Auth.UserLogin)
	authGroup.Get("/discord/callback", cfg.Auth.UserCallback)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.Auth.Logout)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	app.Post("/uploads", cfg.AuthMiddleware.Handle, cfg.Uploads.Upload)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Auth.StaffLogin)
	admin.Get("/discord/login", cfg.Auth.StaffDiscordLogin)
	admin.Get("/discord/callback", cfg.Auth.StaffDiscordCallback)

	staff := admin.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/categories", cfg.StaffTickets.ListCategories)
	staff.Get("/staff", cfg.Staff.Directory)
	staff.Get("/flagged", cfg.Flags.ListFlagged)

	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/export", cfg.Transcripts.ExportAll)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Patch("/tickets/:id", cfg.StaffTickets.UpdateTicket)
	staff.Post("/tickets/:id/close", cfg.StaffTickets.CloseTicket)
	staff.Post("/tickets/:id/messages", cfg.StaffTickets.AddMessage)
	staff.Post("/tickets/:id/notify", cfg.StaffTickets.Notify)
	staff.Get("/tickets/:id/export", cfg.Transcripts.Export)
	staff.Post("/tickets/:id/flags", cfg.Flags.FlagTicket)
	staff.Get("/tickets/:id/flags", cfg.Flags.ListFlags)
	staff.Post("/tickets/:id/flags/resolve", cfg.Flags.ResolveMine)
}
