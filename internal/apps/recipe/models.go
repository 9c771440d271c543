package recipe

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/models"
	"github.com/google/uuid"
)

type Recipe struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	User        *models.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	TimeMinutes int          `gorm:"not null" json:"time_minutes"`
	Price       float64      `gorm:"type:decimal(5,2);not null" json:"price"`
	Description string       `gorm:"type:text" json:"description"`
	Link        string       `gorm:"size:255" json:"link"`
	Image       string       `gorm:"size:255" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt   time.Time    `json:"-"`
	UpdatedAt   time.Time    `json:"-"`
}

// Tag names are unique per owner, not globally.
type Tag struct {
	ID     uint         `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name" json:"-"`
	User   *models.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name   string       `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name" json:"name"`
}

type Ingredient struct {
	ID     uint         `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_ingredients_user_name" json:"-"`
	User   *models.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name   string       `gorm:"size:255;not null;uniqueIndex:idx_ingredients_user_name" json:"name"`
}

// --- DTOs ---

type NameRequest struct {
	Name string `json:"name"`
}

// RecipeRequest is shared by create, full update and partial update. A nil
// Tags or Ingredients leaves links untouched; an empty slice clears them.
type RecipeRequest struct {
	Title       *string        `json:"title"`
	TimeMinutes *int           `json:"time_minutes"`
	Price       *float64       `json:"price"`
	Description *string        `json:"description"`
	Link        *string        `json:"link"`
	Tags        *[]NameRequest `json:"tags"`
	Ingredients *[]NameRequest `json:"ingredients"`
}

type UpdateNameRequest struct {
	Name *string `json:"name"`
}

type NameResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RecipeResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	TimeMinutes int            `json:"time_minutes"`
	Price       float64        `json:"price"`
	Link        string         `json:"link"`
	Tags        []NameResponse `json:"tags"`
	Ingredients []NameResponse `json:"ingredients"`
}

type RecipeDetailResponse struct {
	RecipeResponse
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type ImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}
