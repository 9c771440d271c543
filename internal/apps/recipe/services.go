package recipe

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/owner"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxCharLength = 255
	imageDir      = "uploads/recipe"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNameTaken = errors.New("an entry with this name already exists")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Filter restricts a recipe listing to recipes linked to at least one of the
// given tags and at least one of the given ingredients.
type Filter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// Resolved is the outcome of a get-or-create lookup.
type Resolved[T any] struct {
	Value   T
	Created bool
}

// labelKind names the join table that links a label type to recipes.
type labelKind struct {
	joinTable  string
	joinColumn string
}

var (
	tagKind        = labelKind{joinTable: "recipe_tags", joinColumn: "tag_id"}
	ingredientKind = labelKind{joinTable: "recipe_ingredients", joinColumn: "ingredient_id"}
)

type RecipeService struct {
	db    *gorm.DB
	media *storage.Media
}

func NewRecipeService(db *gorm.DB, media *storage.Media) *RecipeService {
	return &RecipeService{db: db, media: media}
}

func (s *RecipeService) ListRecipes(userID uuid.UUID, f Filter) ([]Recipe, error) {
	q := s.withLabels(s.db).Scopes(owner.Scope(userID))

	if len(f.TagIDs) > 0 {
		q = q.Where("id IN (?)", s.db.Table(tagKind.joinTable).Select("recipe_id").Where("tag_id IN ?", f.TagIDs))
	}
	if len(f.IngredientIDs) > 0 {
		q = q.Where("id IN (?)", s.db.Table(ingredientKind.joinTable).Select("recipe_id").Where("ingredient_id IN ?", f.IngredientIDs))
	}

	var recipes []Recipe
	err := q.Order("id DESC").Find(&recipes).Error
	return recipes, err
}

func (s *RecipeService) GetRecipe(userID uuid.UUID, id uint) (*Recipe, error) {
	return findOwned[Recipe](s.withLabels(s.db), userID, id)
}

func (s *RecipeService) CreateRecipe(userID uuid.UUID, req RecipeRequest) (*Recipe, error) {
	if err := validateRecipe(req, false); err != nil {
		return nil, err
	}

	recipe := Recipe{UserID: userID}
	applyRecipe(&recipe, req)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return s.setLabels(tx, userID, &recipe, req)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(userID, recipe.ID)
}

// UpdateRecipe applies req to an owned recipe. With partial false the
// required fields must be present. Ownership never changes.
func (s *RecipeService) UpdateRecipe(userID uuid.UUID, id uint, req RecipeRequest, partial bool) (*Recipe, error) {
	if err := validateRecipe(req, partial); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		recipe, err := findOwned[Recipe](tx, userID, id)
		if err != nil {
			return err
		}

		applyRecipe(recipe, req)
		err = tx.Model(recipe).
			Select("title", "time_minutes", "price", "description", "link").
			Updates(recipe).Error
		if err != nil {
			return err
		}

		return s.setLabels(tx, userID, recipe, req)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(userID, id)
}

// DeleteRecipe removes the recipe and its links. Tags and ingredients stay.
func (s *RecipeService) DeleteRecipe(userID uuid.UUID, id uint) error {
	var image string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		recipe, err := findOwned[Recipe](tx, userID, id)
		if err != nil {
			return err
		}
		image = recipe.Image

		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Ingredients").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	if err := s.media.Delete(image); err != nil {
		slog.Warn("failed to remove recipe image", "recipe_id", id, "error", err)
	}
	return nil
}

// UploadImage validates and stores an image for an owned recipe. On any
// failure nothing is written.
func (s *RecipeService) UploadImage(userID uuid.UUID, id uint, filename string, data []byte) (*Recipe, error) {
	recipe, err := findOwned[Recipe](s.db, userID, id)
	if err != nil {
		return nil, err
	}

	name, err := s.media.SaveImage(imageDir, filename, data)
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) || errors.Is(err, storage.ErrImageTooLarge) {
			return nil, invalid("image", err.Error())
		}
		return nil, err
	}

	previous := recipe.Image
	if err := s.db.Model(recipe).Update("image", name).Error; err != nil {
		_ = s.media.Delete(name)
		return nil, err
	}

	if previous != "" {
		if err := s.media.Delete(previous); err != nil {
			slog.Warn("failed to remove replaced recipe image", "recipe_id", id, "error", err)
		}
	}

	recipe.Image = name
	return recipe, nil
}

func (s *RecipeService) ListTags(userID uuid.UUID, assignedOnly bool) ([]Tag, error) {
	return listLabels[Tag](s.db, userID, assignedOnly, tagKind)
}

func (s *RecipeService) UpdateTag(userID uuid.UUID, id uint, req UpdateNameRequest, partial bool) (*Tag, error) {
	return updateLabel[Tag](s.db, userID, id, req, partial)
}

func (s *RecipeService) DeleteTag(userID uuid.UUID, id uint) error {
	return deleteLabel[Tag](s.db, userID, id, tagKind)
}

func (s *RecipeService) ListIngredients(userID uuid.UUID, assignedOnly bool) ([]Ingredient, error) {
	return listLabels[Ingredient](s.db, userID, assignedOnly, ingredientKind)
}

func (s *RecipeService) UpdateIngredient(userID uuid.UUID, id uint, req UpdateNameRequest, partial bool) (*Ingredient, error) {
	return updateLabel[Ingredient](s.db, userID, id, req, partial)
}

func (s *RecipeService) DeleteIngredient(userID uuid.UUID, id uint) error {
	return deleteLabel[Ingredient](s.db, userID, id, ingredientKind)
}

// GetOrCreateTag resolves (userID, name) to a tag row, creating it if needed.
func (s *RecipeService) GetOrCreateTag(tx *gorm.DB, userID uuid.UUID, name string) (Resolved[Tag], error) {
	return getOrCreate(tx, userID, name, func() *Tag {
		return &Tag{UserID: userID, Name: name}
	})
}

func (s *RecipeService) GetOrCreateIngredient(tx *gorm.DB, userID uuid.UUID, name string) (Resolved[Ingredient], error) {
	return getOrCreate(tx, userID, name, func() *Ingredient {
		return &Ingredient{UserID: userID, Name: name}
	})
}

func (s *RecipeService) withLabels(db *gorm.DB) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }
	return db.Preload("Tags", byID).Preload("Ingredients", byID)
}

func (s *RecipeService) setLabels(tx *gorm.DB, userID uuid.UUID, recipe *Recipe, req RecipeRequest) error {
	if req.Tags != nil {
		tags := make([]Tag, 0, len(*req.Tags))
		for _, name := range uniqueNames(*req.Tags) {
			r, err := s.GetOrCreateTag(tx, userID, name)
			if err != nil {
				return err
			}
			tags = append(tags, r.Value)
		}
		if err := replaceLinks(tx, recipe, "Tags", tags, len(tags)); err != nil {
			return err
		}
	}

	if req.Ingredients != nil {
		ingredients := make([]Ingredient, 0, len(*req.Ingredients))
		for _, name := range uniqueNames(*req.Ingredients) {
			r, err := s.GetOrCreateIngredient(tx, userID, name)
			if err != nil {
				return err
			}
			ingredients = append(ingredients, r.Value)
		}
		if err := replaceLinks(tx, recipe, "Ingredients", ingredients, len(ingredients)); err != nil {
			return err
		}
	}

	return nil
}

func replaceLinks(tx *gorm.DB, recipe *Recipe, association string, values interface{}, n int) error {
	assoc := tx.Model(recipe).Association(association)
	if n == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

// findOwned loads row id only if it belongs to userID. Rows owned by
// someone else are reported exactly like missing rows.
func findOwned[T any](db *gorm.DB, userID uuid.UUID, id uint) (*T, error) {
	var row T
	res := db.Scopes(owner.Scope(userID)).Limit(1).Find(&row, id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

// getOrCreate is safe under concurrent callers: the insert relies on the
// (user_id, name) unique index and re-reads when another writer won.
func getOrCreate[T any](tx *gorm.DB, userID uuid.UUID, name string, build func() *T) (Resolved[T], error) {
	var existing T
	lookup := func() (bool, error) {
		res := tx.Scopes(owner.Scope(userID)).Where("name = ?", name).Limit(1).Find(&existing)
		return res.RowsAffected > 0, res.Error
	}

	found, err := lookup()
	if err != nil {
		return Resolved[T]{}, err
	}
	if found {
		return Resolved[T]{Value: existing}, nil
	}

	row := build()
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return Resolved[T]{}, res.Error
	}
	if res.RowsAffected == 1 {
		return Resolved[T]{Value: *row, Created: true}, nil
	}

	found, err = lookup()
	if err != nil {
		return Resolved[T]{}, err
	}
	if !found {
		return Resolved[T]{}, fmt.Errorf("get or create %q: row vanished after conflict", name)
	}
	return Resolved[T]{Value: existing}, nil
}

func listLabels[T any](db *gorm.DB, userID uuid.UUID, assignedOnly bool, kind labelKind) ([]T, error) {
	q := db.Scopes(owner.Scope(userID))
	if assignedOnly {
		q = q.Where("id IN (?)", db.Table(kind.joinTable).Select(kind.joinColumn))
	}

	var rows []T
	err := q.Order("name DESC").Find(&rows).Error
	return rows, err
}

// updateLabel renames an owned tag or ingredient. A full update requires
// the name; a partial one without it returns the row unchanged.
func updateLabel[T any](db *gorm.DB, userID uuid.UUID, id uint, req UpdateNameRequest, partial bool) (*T, error) {
	if req.Name == nil {
		if !partial {
			return nil, invalid("name", "this field is required")
		}
		return findOwned[T](db, userID, id)
	}
	if err := validateName("name", *req.Name); err != nil {
		return nil, err
	}

	row, err := findOwned[T](db, userID, id)
	if err != nil {
		return nil, err
	}

	if err := db.Model(row).Update("name", *req.Name).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameTaken
		}
		return nil, err
	}

	return findOwned[T](db, userID, id)
}

func deleteLabel[T any](db *gorm.DB, userID uuid.UUID, id uint, kind labelKind) error {
	return db.Transaction(func(tx *gorm.DB) error {
		row, err := findOwned[T](tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+kind.joinTable+" WHERE "+kind.joinColumn+" = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(row).Error
	})
}

func applyRecipe(recipe *Recipe, req RecipeRequest) {
	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.TimeMinutes != nil {
		recipe.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		recipe.Price = *req.Price
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Link != nil {
		recipe.Link = *req.Link
	}
}

func validateRecipe(req RecipeRequest, partial bool) error {
	if !partial {
		switch {
		case req.Title == nil:
			return invalid("title", "this field is required")
		case req.TimeMinutes == nil:
			return invalid("time_minutes", "this field is required")
		case req.Price == nil:
			return invalid("price", "this field is required")
		}
	}

	if req.Title != nil {
		if err := validateName("title", *req.Title); err != nil {
			return err
		}
	}
	if req.TimeMinutes != nil && *req.TimeMinutes < 0 {
		return invalid("time_minutes", "ensure this value is greater than or equal to 0")
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return err
		}
	}
	if req.Link != nil && len(*req.Link) > maxCharLength {
		return invalid("link", "ensure this field has no more than 255 characters")
	}
	if req.Tags != nil {
		for _, t := range *req.Tags {
			if err := validateName("tags", t.Name); err != nil {
				return err
			}
		}
	}
	if req.Ingredients != nil {
		for _, i := range *req.Ingredients {
			if err := validateName("ingredients", i.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(field, "this field may not be blank")
	}
	if len(name) > maxCharLength {
		return invalid(field, "ensure this field has no more than 255 characters")
	}
	return nil
}

// validatePrice enforces decimal(5,2): below 1000 with two decimal places.
func validatePrice(price float64) error {
	if price < 0 || price >= 1000 {
		return invalid("price", "ensure this value is between 0 and 999.99")
	}
	s := strconv.FormatFloat(price, 'f', -1, 64)
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > 2 {
		return invalid("price", "ensure that there are no more than 2 decimal places")
	}
	return nil
}

func uniqueNames(reqs []NameRequest) []string {
	seen := make(map[string]struct{}, len(reqs))
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		names = append(names, r.Name)
	}
	return names
}
