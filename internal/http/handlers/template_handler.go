package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "equiform/internal/log"
	"equiform/internal/services"
	"equiform/internal/validate"
)

type TemplateHandler struct {
	Resolver *services.ResolverService
}

// Resolve handles GET /categories/:ref/template. Unknown category refs get
// an empty 404; a known category with no schema anywhere in its ancestry or
// sibling set gets a 200 with a null body, so callers can tell the two
// apart. Store failures bubble up to the app error handler.
func (h *TemplateHandler) Resolve(c *fiber.Ctx) error {
	ref, ok := validate.Ref(c.Params("ref"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid category ref",
		})
	}

	marketplace := c.Query("marketplace")
	if marketplace != "" {
		if marketplace, ok = validate.Marketplace(marketplace); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid marketplace",
			})
		}
	}

	cat, resolved, err := h.Resolver.Resolve(marketplace, ref)
	if err != nil {
		return err
	}
	if cat == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if resolved == nil {
		applog.Info(c, "template.resolve.none", map[string]any{"category": cat.Slug})
		return c.JSON(nil)
	}
	return c.JSON(resolved)
}
