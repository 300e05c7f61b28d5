package router

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/handlers"
	catalog_handlers "github.com/sahilchouksey/examace-vault/handlers/catalog"
	forms_handlers "github.com/sahilchouksey/examace-vault/handlers/forms"
	navigate_handlers "github.com/sahilchouksey/examace-vault/handlers/navigate"
	resource_handlers "github.com/sahilchouksey/examace-vault/handlers/resource"
	"github.com/sahilchouksey/examace-vault/navigator"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
	"github.com/sahilchouksey/examace-vault/services"
	"github.com/sahilchouksey/examace-vault/utils/middleware"
)

// Dependencies is everything the routes need, built once at startup
type Dependencies struct {
	DB     handlers.DBChecker
	Cache  handlers.CachePinger // nil when Redis is not configured
	Loader navigator.Loader
	Lister *resources.Lister
	Search search.Store
	Stats  *services.StatsService

	Subscriptions *services.SubscriptionService
	Contact       *services.ContactService

	AllowedOrigins    string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	FormLimit         int
	FormWindow        time.Duration
	AccessLog         io.Writer
	Logger            zerolog.Logger
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	if deps.FormLimit <= 0 {
		deps.FormLimit, deps.FormWindow = 5, time.Minute
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    deps.AllowedOrigins,
		RateLimitRequests: deps.RateLimitRequests,
		RateLimitWindow:   deps.RateLimitWindow,
		AccessLog:         deps.AccessLog,
		Logger:            deps.Logger,
	})

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache)
	catalogHandler := catalog_handlers.NewCatalogHandler(deps.Loader)
	resourceHandler := resource_handlers.NewResourceHandler(deps.Lister, deps.Search, deps.Stats, deps.Logger)
	formsHandler := forms_handlers.NewFormsHandler(deps.Subscriptions, deps.Contact)
	navigateHandler := navigate_handlers.NewNavigateHandler(deps.Loader, deps.Lister)

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.HandleCheckHealth)

	// API v1 group
	api := app.Group("/api/v1")

	// Catalog hierarchy
	api.Get("/universities", catalogHandler.ListUniversities)
	api.Get("/universities/:id", catalogHandler.Get(catalog.KindUniversity))
	api.Get("/universities/:id/degrees", catalogHandler.ListChildren(catalog.KindDegree))
	api.Get("/degrees/:id", catalogHandler.Get(catalog.KindDegree))
	api.Get("/degrees/:id/semesters", catalogHandler.ListChildren(catalog.KindSemester))
	api.Get("/semesters/:id", catalogHandler.Get(catalog.KindSemester))
	api.Get("/semesters/:id/subjects", catalogHandler.ListChildren(catalog.KindSubject))
	api.Get("/subjects/:id", catalogHandler.Get(catalog.KindSubject))

	// Resources
	api.Get("/subjects/:id/resources", resourceHandler.ListSubjectResources)
	api.Get("/resources/search", resourceHandler.Search)
	api.Get("/resources/:id/download", resourceHandler.Download)
	api.Post("/resources/:id/downloads", resourceHandler.RecordDownload)
	api.Get("/solved-articles/:id", resourceHandler.GetArticle)
	api.Get("/stats", resourceHandler.Stats)

	// Deep links
	api.Get("/navigate/*", navigateHandler.Navigate)
	api.Get("/navigate", navigateHandler.Navigate)

	// Forms, throttled harder than reads
	api.Post("/subscriptions", middleware.FormLimiter(deps.FormLimit, deps.FormWindow), formsHandler.Subscribe)
	api.Post("/contact", middleware.FormLimiter(deps.FormLimit, deps.FormWindow), formsHandler.Contact)

	app.Use(middleware.NotFound)
}
