package handlers

import (
	"github.com/gofiber/fiber/v2"

	"equiform/internal/services"
	"equiform/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// Tree handles GET /marketplaces/:id/categories/tree.
func (h *CategoryHandler) Tree(c *fiber.Ctx) error {
	id, ok := validate.Marketplace(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid marketplace"})
	}
	exists, err := h.Catalog.MarketplaceExists(id)
	if err != nil {
		return err
	}
	if !exists {
		return c.SendStatus(fiber.StatusNotFound)
	}
	nodes, err := h.Catalog.Tree(id)
	if err != nil {
		return err
	}
	return c.JSON(nodes)
}

// List handles GET /marketplaces/:id/categories.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	id, ok := validate.Marketplace(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid marketplace"})
	}
	exists, err := h.Catalog.MarketplaceExists(id)
	if err != nil {
		return err
	}
	if !exists {
		return c.SendStatus(fiber.StatusNotFound)
	}
	cats, err := h.Catalog.ListCategories(id)
	if err != nil {
		return err
	}
	return c.JSON(cats)
}
