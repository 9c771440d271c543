package recipe

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/owner"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RecipeHandler struct {
	service *RecipeService
	media   *storage.Media
}

func NewRecipeHandler(service *RecipeService, media *storage.Media) *RecipeHandler {
	return &RecipeHandler{service: service, media: media}
}

func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	tagIDs, err := parseIDs(c.Query("tags"))
	if err != nil {
		return badRequest(c, "tags: expected comma-separated ids")
	}
	ingredientIDs, err := parseIDs(c.Query("ingredients"))
	if err != nil {
		return badRequest(c, "ingredients: expected comma-separated ids")
	}

	recipes, err := h.service.ListRecipes(user.ID, Filter{TagIDs: tagIDs, IngredientIDs: ingredientIDs})
	if err != nil {
		return h.fail(c, err, "Failed to fetch recipes")
	}

	resp := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp = append(resp, toRecipeResponse(&recipes[i]))
	}
	return c.JSON(resp)
}

func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	recipe, err := h.service.GetRecipe(user.ID, id)
	if err != nil {
		return h.fail(c, err, "Failed to fetch recipe")
	}

	return c.JSON(h.toDetail(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var req RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	recipe, err := h.service.CreateRecipe(user.ID, req)
	if err != nil {
		return h.fail(c, err, "Failed to create recipe")
	}

	return c.Status(fiber.StatusCreated).JSON(h.toDetail(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	return h.update(c, false)
}

func (h *RecipeHandler) PartialUpdateRecipe(c *fiber.Ctx) error {
	return h.update(c, true)
}

func (h *RecipeHandler) update(c *fiber.Ctx, partial bool) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	var req RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	recipe, err := h.service.UpdateRecipe(user.ID, id, req, partial)
	if err != nil {
		return h.fail(c, err, "Failed to update recipe")
	}

	return c.JSON(h.toDetail(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.service.DeleteRecipe(user.ID, id); err != nil {
		return h.fail(c, err, "Failed to delete recipe")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecipeHandler) UploadImage(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image: no file was submitted")
	}

	f, err := file.Open()
	if err != nil {
		return badRequest(c, "image: unable to read upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "image: unable to read upload")
	}

	recipe, err := h.service.UploadImage(user.ID, id, file.Filename, data)
	if err != nil {
		return h.fail(c, err, "Failed to upload image")
	}

	return c.JSON(ImageResponse{ID: recipe.ID, Image: h.media.URL(recipe.Image)})
}

func (h *RecipeHandler) ListTags(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	assignedOnly, err := parseFlag(c.Query("assigned_only"))
	if err != nil {
		return badRequest(c, "assigned_only: expected 0 or 1")
	}

	tags, err := h.service.ListTags(user.ID, assignedOnly)
	if err != nil {
		return h.fail(c, err, "Failed to fetch tags")
	}

	resp := make([]NameResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, NameResponse{ID: t.ID, Name: t.Name})
	}
	return c.JSON(resp)
}

func (h *RecipeHandler) UpdateTag(c *fiber.Ctx) error {
	return h.updateTag(c, false)
}

func (h *RecipeHandler) PartialUpdateTag(c *fiber.Ctx) error {
	return h.updateTag(c, true)
}

func (h *RecipeHandler) updateTag(c *fiber.Ctx, partial bool) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	var req UpdateNameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tag, err := h.service.UpdateTag(user.ID, id, req, partial)
	if err != nil {
		return h.fail(c, err, "Failed to update tag")
	}

	return c.JSON(NameResponse{ID: tag.ID, Name: tag.Name})
}

func (h *RecipeHandler) DeleteTag(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.service.DeleteTag(user.ID, id); err != nil {
		return h.fail(c, err, "Failed to delete tag")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecipeHandler) ListIngredients(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	assignedOnly, err := parseFlag(c.Query("assigned_only"))
	if err != nil {
		return badRequest(c, "assigned_only: expected 0 or 1")
	}

	ingredients, err := h.service.ListIngredients(user.ID, assignedOnly)
	if err != nil {
		return h.fail(c, err, "Failed to fetch ingredients")
	}

	resp := make([]NameResponse, 0, len(ingredients))
	for _, i := range ingredients {
		resp = append(resp, NameResponse{ID: i.ID, Name: i.Name})
	}
	return c.JSON(resp)
}

func (h *RecipeHandler) UpdateIngredient(c *fiber.Ctx) error {
	return h.updateIngredient(c, false)
}

func (h *RecipeHandler) PartialUpdateIngredient(c *fiber.Ctx) error {
	return h.updateIngredient(c, true)
}

func (h *RecipeHandler) updateIngredient(c *fiber.Ctx, partial bool) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	var req UpdateNameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ingredient, err := h.service.UpdateIngredient(user.ID, id, req, partial)
	if err != nil {
		return h.fail(c, err, "Failed to update ingredient")
	}

	return c.JSON(NameResponse{ID: ingredient.ID, Name: ingredient.Name})
}

func (h *RecipeHandler) DeleteIngredient(c *fiber.Ctx) error {
	user, err := owner.GetUser(c)
	if err != nil {
		return unauthorized(c)
	}

	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.service.DeleteIngredient(user.ID, id); err != nil {
		return h.fail(c, err, "Failed to delete ingredient")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// fail maps service errors onto the 400/404/500 taxonomy.
func (h *RecipeHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return notFound(c)
	case errors.Is(err, ErrNameTaken):
		return badRequest(c, err.Error())
	case errors.As(err, &verr):
		return badRequest(c, verr.Error())
	}

	slog.Error(fallback, "method", c.Method(), "path", c.Path(), "user_id", userIDString(c), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func (h *RecipeHandler) toDetail(r *Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		RecipeResponse: toRecipeResponse(r),
		Description:    r.Description,
		Image:          h.media.URL(r.Image),
	}
}

func toRecipeResponse(r *Recipe) RecipeResponse {
	tags := make([]NameResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, NameResponse{ID: t.ID, Name: t.Name})
	}
	ingredients := make([]NameResponse, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, NameResponse{ID: i.ID, Name: i.Name})
	}
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseIDs reads a comma-separated id list; an empty string means no filter.
func parseIDs(s string) ([]uint, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id " + strconv.Quote(p))
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func userIDString(c *fiber.Ctx) string {
	if user, err := owner.GetUser(c); err == nil && user.ID != uuid.Nil {
		return user.ID.String()
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: "Not found",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
