package recipe

import (
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RecipePlugin struct {
	media *storage.Media
}

func New(media *storage.Media) *RecipePlugin {
	return &RecipePlugin{media: media}
}

func (p *RecipePlugin) ID() string { return "recipe" }

func (p *RecipePlugin) Models() []interface{} {
	return []interface{}{
		&Tag{},
		&Ingredient{},
		&Recipe{},
	}
}

func (p *RecipePlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewRecipeService(db, p.media)
	handler := NewRecipeHandler(svc, p.media)
	auth := middleware.Authenticated(cfg, db)

	recipes := router.Group("/recipes", auth...)
	recipes.Get("/", handler.ListRecipes)
	recipes.Post("/", handler.CreateRecipe)
	recipes.Get("/:id", handler.GetRecipe)
	recipes.Put("/:id", handler.UpdateRecipe)
	recipes.Patch("/:id", handler.PartialUpdateRecipe)
	recipes.Delete("/:id", handler.DeleteRecipe)
	recipes.Post("/:id/upload-image", handler.UploadImage)

	tags := router.Group("/tags", auth...)
	tags.Get("/", handler.ListTags)
	tags.Put("/:id", handler.UpdateTag)
	tags.Patch("/:id", handler.PartialUpdateTag)
	tags.Delete("/:id", handler.DeleteTag)

	ingredients := router.Group("/ingredients", auth...)
	ingredients.Get("/", handler.ListIngredients)
	ingredients.Put("/:id", handler.UpdateIngredient)
	ingredients.Patch("/:id", handler.PartialUpdateIngredient)
	ingredients.Delete("/:id", handler.DeleteIngredient)
}
