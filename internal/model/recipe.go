package model

import "time"

// RecipeView is the read shape of a recipe: flat ids plus the resolved
// category name and owner username.  It never embeds a User or Category, so
// it serializes without cycles.
type RecipeView struct {
	ID            uint64     `db:"id" json:"id"`
	Title         string     `db:"title" json:"baslik"`
	Description   string     `db:"description" json:"aciklama"`
	Instructions  string     `db:"instructions" json:"hazirlanis"`
	Ingredients   string     `db:"ingredients" json:"malzemeler"`
	PrepMinutes   *int       `db:"prep_minutes" json:"hazirlikSuresi"`
	CookMinutes   *int       `db:"cook_minutes" json:"pisirmeSuresi"`
	Servings      *int       `db:"servings" json:"porsiyon"`
	Difficulty    string     `db:"difficulty" json:"zorlukDerecesi"`
	ImageURL      string     `db:"image_url" json:"resimUrl"`
	IsActive      bool       `db:"is_active" json:"aktifMi"`
	CreatedAt     time.Time  `db:"created_at" json:"olusturmaTarihi"`
	UpdatedAt     *time.Time `db:"updated_at" json:"guncellemeTarihi"`
	OwnerID       uint64     `db:"user_id" json:"kullaniciId"`
	OwnerUsername string     `db:"owner_username" json:"kullaniciAdi"`
	CategoryID    uint64     `db:"category_id" json:"kategoriId"`
	CategoryName  string     `db:"category_name" json:"kategoriAdi"`
	CommentCount  int        `db:"comment_count" json:"yorumSayisi"`
	AverageRating float64    `db:"average_rating" json:"ortalamaPuan"`

	IngredientLines []IngredientLine `db:"-" json:"malzemeListesi"`
	Images          []Image          `db:"-" json:"resimler"`
}

// IngredientLine is one structured row of recipe_ingredients.
type IngredientLine struct {
	ID     uint64  `db:"id" json:"id"`
	Name   string  `db:"name" json:"malzemeAdi" validate:"required,notblank,trimmax=100"`
	Amount float64 `db:"amount" json:"miktar" validate:"gte=0"`
	Unit   string  `db:"unit" json:"birim" validate:"trimmax=20"`
}

// Image is an opaque image reference attached to a recipe.  URL is passed
// through untouched.
type Image struct {
	ID        uint64 `db:"id" json:"id"`
	FileName  string `db:"file_name" json:"dosyaAdi" validate:"max=200"`
	URL       string `db:"url" json:"dosyaYolu" validate:"required,notblank,max=500"`
	IsPrimary bool   `db:"is_primary" json:"anaResimMi"`
}

// RecipeFilter narrows List.  Zero values mean "no filter".
type RecipeFilter struct {
	Difficulty string
	CategoryID uint64
}

// RecipeFields is shared by create and update.  Every field is optional at
// the type level: update overwrites only what is supplied, while create
// additionally requires title, instructions, ingredients and category.
type RecipeFields struct {
	Title        *string `json:"baslik" validate:"omitnil,notblank,trimmin=3,trimmax=200"`
	Description  *string `json:"aciklama" validate:"omitnil,max=1000"`
	Instructions *string `json:"hazirlanis" validate:"omitnil,notblank"`
	Ingredients  *string `json:"malzemeler" validate:"omitnil,notblank"`
	CategoryID   *uint64 `json:"kategoriId" validate:"omitnil,gt=0"`
	PrepMinutes  *int    `json:"hazirlikSuresi" validate:"omitnil,gt=0"`
	CookMinutes  *int    `json:"pisirmeSuresi" validate:"omitnil,gt=0"`
	Servings     *int    `json:"porsiyon" validate:"omitnil,gt=0"`
	Difficulty   *string `json:"zorlukDerecesi" validate:"omitnil,max=50"`
	ImageURL     *string `json:"resimUrl" validate:"omitnil,max=500"`

	// When non-nil these replace the stored sets; an empty slice clears them.
	IngredientLines *[]IngredientLine `json:"malzemeListesi" validate:"omitnil,max=100,dive"`
	Images          *[]Image          `json:"resimler" validate:"omitnil,max=20,dive"`
}

// ValidateCreate checks f for use as a new recipe.
func (f RecipeFields) ValidateCreate() error {
	var missing []FieldError
	if f.Title == nil {
		missing = append(missing, FieldError{Field: "baslik", Message: msgRequired})
	}
	if f.Instructions == nil {
		missing = append(missing, FieldError{Field: "hazirlanis", Message: msgRequired})
	}
	if f.Ingredients == nil {
		missing = append(missing, FieldError{Field: "malzemeler", Message: msgRequired})
	}
	if f.CategoryID == nil {
		missing = append(missing, FieldError{Field: "kategoriId", Message: msgRequired})
	}
	return merge(Validate(f), missing)
}

// ValidateUpdate checks f as a partial update.
func (f RecipeFields) ValidateUpdate() error {
	return Validate(f)
}
