package navigate

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/navigator"
	"github.com/sahilchouksey/examace-vault/utils/response"
)

// NavigateHandler renders a deep link server side: the route is restored
// into a fresh navigator and its snapshot returned
type NavigateHandler struct {
	loader navigator.Loader
	lister navigator.ListingLoader
}

func NewNavigateHandler(loader navigator.Loader, lister navigator.ListingLoader) *NavigateHandler {
	return &NavigateHandler{loader: loader, lister: lister}
}

// Navigate handles GET /api/v1/navigate/*
func (h *NavigateHandler) Navigate(c *fiber.Ctx) error {
	route, err := navigator.ParseRoute("/" + c.Params("*"))
	if err != nil {
		return response.NotFound(c, "Page not found")
	}

	ctx := c.UserContext()
	m, err := navigator.New(ctx, h.loader, h.lister, navigator.ViewHome)
	if err != nil {
		return err
	}
	if err := m.Restore(ctx, route); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound), errors.Is(err, navigator.ErrBrokenChain):
			return response.NotFound(c, "Page not found")
		default:
			return response.FetchFailed(c, "Failed to load page", err.Error())
		}
	}

	snap := m.Snapshot()
	if snap.Items != nil && snap.Items.Failed() {
		return response.FetchFailed(c, "Failed to load "+snap.Items.Kind.Plural(), snap.Items.Reason)
	}
	if snap.Resources != nil && snap.Resources.Status == catalog.StatusFailed {
		return response.FetchFailed(c, "Failed to load resources", snap.Resources.Reason)
	}
	return response.Success(c, snap)
}
