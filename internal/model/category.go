package model

// CategoryView is a category with the number of recipes filed under it.
type CategoryView struct {
	ID          uint64  `db:"id" json:"id"`
	Name        string  `db:"name" json:"ad"`
	Description *string `db:"description" json:"aciklama"`
	RecipeCount int     `db:"recipe_count" json:"tarifSayisi"`
}

// CategoryInput is the body of POST and PUT /categories.
type CategoryInput struct {
	Name        string  `json:"ad" validate:"required,notblank,trimmax=100"`
	Description *string `json:"aciklama" validate:"omitnil,max=500"`
}
