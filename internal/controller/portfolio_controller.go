package controller

import (
	"portfolio-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IPortfolioController serves the anonymous read-only view of public notes.
type IPortfolioController interface {
	RegisterRoutes(r fiber.Router)
	ListPublic(ctx *fiber.Ctx) error
	ShowPublic(ctx *fiber.Ctx) error
}

type portfolioController struct {
	noteService service.INoteService
}

func NewPortfolioController(noteService service.INoteService) IPortfolioController {
	return &portfolioController{
		noteService: noteService,
	}
}

func (c *portfolioController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/portfolio/notes")
	h.Get("", c.ListPublic)
	h.Get(":id", c.ShowPublic)
}

func (c *portfolioController) ListPublic(ctx *fiber.Ctx) error {
	res, err := c.noteService.ListPublic(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *portfolioController) ShowPublic(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.noteService.ShowPublic(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"note": res})
}
