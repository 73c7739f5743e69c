package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

// InteractionRepo stores comments, ratings and favorites.  Each row ties a
// user to a recipe; rows vanish with their recipe but survive their user.
type InteractionRepo struct {
	db  *sqlx.DB
	now clock
}

// NewInteractionRepo returns an InteractionRepo over db.
func NewInteractionRepo(db *sqlx.DB) *InteractionRepo { return &InteractionRepo{db: db} }

// WithClock returns a copy of r that stamps times from now.
func (r *InteractionRepo) WithClock(now func() time.Time) *InteractionRepo {
	return &InteractionRepo{db: r.db, now: now}
}

func (r *InteractionRepo) recipeExists(ctx context.Context, recipeID uint64) error {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM recipes WHERE id = ?", recipeID); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment attaches a comment by userID to recipeID.
func (r *InteractionRepo) AddComment(ctx context.Context, recipeID, userID uint64, body string) (model.CommentView, error) {
	if err := r.recipeExists(ctx, recipeID); err != nil {
		return model.CommentView{}, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (recipe_id, user_id, body, created_at) VALUES (?, ?, ?, ?)",
		recipeID, userID, strings.TrimSpace(body), r.now.now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.CommentView{}, ErrNotFound
		}
		return model.CommentView{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.CommentView{}, err
	}
	var c model.CommentView
	err = r.db.GetContext(ctx, &c, commentSelect+" WHERE cm.id = ?", id)
	return c, err
}

const commentSelect = `SELECT cm.id, cm.recipe_id, cm.user_id, u.username, cm.body, cm.created_at
FROM comments cm JOIN users u ON u.id = cm.user_id`

// ListComments returns a recipe's comments, newest first.
func (r *InteractionRepo) ListComments(ctx context.Context, recipeID uint64) ([]model.CommentView, error) {
	if err := r.recipeExists(ctx, recipeID); err != nil {
		return nil, err
	}
	out := []model.CommentView{}
	err := r.db.SelectContext(ctx, &out,
		commentSelect+" WHERE cm.recipe_id = ? ORDER BY cm.created_at DESC, cm.id DESC", recipeID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddRating records userID's score for recipeID.  A second rating by the
// same user is ErrConflict; the unique index decides, not a prior read.
func (r *InteractionRepo) AddRating(ctx context.Context, recipeID, userID uint64, score int) (model.Rating, error) {
	if err := r.recipeExists(ctx, recipeID); err != nil {
		return model.Rating{}, err
	}
	rt := model.Rating{RecipeID: recipeID, UserID: userID, Score: score, CreatedAt: r.now.now()}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (recipe_id, user_id, score, created_at) VALUES (?, ?, ?, ?)",
		rt.RecipeID, rt.UserID, rt.Score, rt.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.Rating{}, ErrConflict
		case isForeignKeyViolation(err):
			return model.Rating{}, ErrNotFound
		}
		return model.Rating{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Rating{}, err
	}
	rt.ID = uint64(id)
	return rt, nil
}

// AddFavorite marks recipeID as a favorite of userID.
func (r *InteractionRepo) AddFavorite(ctx context.Context, recipeID, userID uint64) error {
	if err := r.recipeExists(ctx, recipeID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO favorites (recipe_id, user_id, created_at) VALUES (?, ?, ?)",
		recipeID, userID, r.now.now())
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrConflict
	case isForeignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

// RemoveFavorite deletes the favorite, or returns ErrNotFound if there was
// none.
func (r *InteractionRepo) RemoveFavorite(ctx context.Context, recipeID, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM favorites WHERE recipe_id = ? AND user_id = ?", recipeID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFavorite reports whether userID has favorited recipeID.  A missing
// recipe is ErrNotFound rather than false.
func (r *InteractionRepo) IsFavorite(ctx context.Context, recipeID, userID uint64) (bool, error) {
	if err := r.recipeExists(ctx, recipeID); err != nil {
		return false, err
	}
	var id uint64
	err := r.db.GetContext(ctx, &id, "SELECT id FROM favorites WHERE recipe_id = ? AND user_id = ?", recipeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
