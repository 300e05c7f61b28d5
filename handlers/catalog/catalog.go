package catalog

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/navigator"
	"github.com/sahilchouksey/examace-vault/utils/response"
)

// CatalogHandler serves the four browsable levels
type CatalogHandler struct {
	loader navigator.Loader
}

// NewCatalogHandler creates a handler over a fetcher
func NewCatalogHandler(loader navigator.Loader) *CatalogHandler {
	return &CatalogHandler{loader: loader}
}

// ListUniversities handles GET /api/v1/universities
func (h *CatalogHandler) ListUniversities(c *fiber.Ctx) error {
	return h.respond(c, h.loader.ListChildren(c.UserContext(), catalog.KindUniversity, nil))
}

// ListChildren handles GET /api/v1/<parent plural>/:id/<kind plural>
func (h *CatalogHandler) ListChildren(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parentID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return response.BadRequest(c, "Invalid id")
		}
		return h.respond(c, h.loader.ListChildren(c.UserContext(), kind, &parentID))
	}
}

// Get handles GET /api/v1/<kind plural>/:id
func (h *CatalogHandler) Get(kind catalog.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return response.BadRequest(c, "Invalid id")
		}

		entity, err := h.loader.Get(c.UserContext(), kind, id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return response.NotFound(c, label(kind)+" not found")
			}
			return response.FetchFailed(c, "Failed to fetch "+string(kind), err.Error())
		}
		return response.Success(c, entity)
	}
}

// respond keeps a failed load apart from an empty one
func (h *CatalogHandler) respond(c *fiber.Ctx, res catalog.Result) error {
	if res.Failed() {
		return response.FetchFailed(c, "Failed to load "+res.Kind.Plural(), res.Reason)
	}
	return response.Success(c, res.Items())
}

func label(kind catalog.Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
