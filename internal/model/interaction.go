package model

import "time"

// CommentView is a comment with its author's username resolved.
type CommentView struct {
	ID        uint64    `db:"id" json:"id"`
	RecipeID  uint64    `db:"recipe_id" json:"tarifId"`
	UserID    uint64    `db:"user_id" json:"kullaniciId"`
	Username  string    `db:"username" json:"kullaniciAdi"`
	Body      string    `db:"body" json:"yorum"`
	CreatedAt time.Time `db:"created_at" json:"olusturmaTarihi"`
}

// CommentInput is the body of POST /recipes/:id/comments.
type CommentInput struct {
	Body string `json:"yorum" validate:"required,notblank,trimmax=1000"`
}

// Rating is one user's score for one recipe.
type Rating struct {
	ID        uint64    `db:"id" json:"id"`
	RecipeID  uint64    `db:"recipe_id" json:"tarifId"`
	UserID    uint64    `db:"user_id" json:"kullaniciId"`
	Score     int       `db:"score" json:"puan"`
	CreatedAt time.Time `db:"created_at" json:"olusturmaTarihi"`
}

// RatingInput is the body of POST /recipes/:id/ratings.
type RatingInput struct {
	Score int `json:"puan" validate:"required,min=1,max=5"`
}
