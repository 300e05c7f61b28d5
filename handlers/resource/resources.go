package resource

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
	"github.com/sahilchouksey/examace-vault/services"
	"github.com/sahilchouksey/examace-vault/utils/response"
)

// ResourceHandler handles the leaf level: listings, downloads, articles,
// search and the home statistics
type ResourceHandler struct {
	lister *resources.Lister
	search search.Store
	stats  *services.StatsService
	log    zerolog.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(lister *resources.Lister, searchStore search.Store, stats *services.StatsService, logger zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{
		lister: lister,
		search: searchStore,
		stats:  stats,
		log:    logger,
	}
}

// ListSubjectResources handles GET /api/v1/subjects/:id/resources?type=
func (h *ResourceHandler) ListSubjectResources(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid subject id")
	}
	filter := c.Query("type", resources.TypeAll)
	if !resources.ValidFilter(filter) {
		return response.BadRequest(c, "Unknown resource type: "+filter)
	}

	listings, err := h.lister.ListSubject(c.UserContext(), subjectID)
	if err != nil {
		return response.FetchFailed(c, "Failed to load resources", err.Error())
	}
	return response.Success(c, resources.FilterByType(listings, filter))
}

// Search handles GET /api/v1/resources/search?q=
func (h *ResourceHandler) Search(c *fiber.Ctx) error {
	listings, err := search.Run(c.UserContext(), h.search, c.Query("q"))
	if err != nil {
		return response.FetchFailed(c, "Search failed", err.Error())
	}
	return response.Success(c, listings)
}

// Download handles GET /api/v1/resources/:id/download. It redirects to the
// file unless ?redirect=false asks for the ticket as JSON. Only the ticket
// carries the suggested filename.
func (h *ResourceHandler) Download(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}

	ticket, err := h.lister.DownloadByID(c.UserContext(), id)
	switch {
	case errors.Is(err, resources.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, resources.ErrUnresolvable):
		h.log.Error().Err(err).Str("resource_id", id.String()).Msg("resource has no fetchable file")
		return response.InternalServerError(c, "File is unavailable")
	case err != nil:
		return response.FetchFailed(c, "Failed to load resource", err.Error())
	}

	if !c.QueryBool("redirect", true) {
		return response.Success(c, ticket)
	}
	return c.Redirect(ticket.URL, fiber.StatusFound)
}

// RecordDownload handles POST /api/v1/resources/:id/downloads
func (h *ResourceHandler) RecordDownload(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}
	if err := h.lister.RecordDownload(c.UserContext(), id); err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		return response.FetchFailed(c, "Failed to record download", err.Error())
	}
	return response.Accepted(c, "Download recorded")
}

// GetArticle handles GET /api/v1/solved-articles/:id
func (h *ResourceHandler) GetArticle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid article id")
	}
	article, err := h.lister.GetArticle(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			return response.NotFound(c, "Article not found")
		}
		return response.FetchFailed(c, "Failed to load article", err.Error())
	}
	return response.Success(c, article)
}

// Stats handles GET /api/v1/stats
func (h *ResourceHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Get(c.UserContext())
	if err != nil {
		return response.FetchFailed(c, "Failed to load statistics", err.Error())
	}
	return response.Success(c, stats)
}
