package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expedientes/internal/auth"
	"expedientes/internal/http/middleware"
	"expedientes/internal/service"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Cases  service.CaseService
	Health Pinger
	Gate   auth.Gate
	Tokens *auth.Tokens
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service package.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(d.Health))

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/offices", ListOffices(d.Cases))
	app.Post("/sessions", CreateSession(d.Cases, d.Gate, d.Tokens))

	session := middleware.RequireSession(d.Tokens)
	app.Get("/offices/:office/pending.csv", session, ExportPending(d.Cases))
	app.Get("/offices/:office/pending", session, PendingRecords(d.Cases))
	app.Put("/cases/:caseID/forwarded-date", session, SubmitUpdate(d.Cases))
}
