package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

// RecipeRepo encapsulates the queries over recipes and their ingredient
// lines and images.  Every mutation runs in one transaction that first
// loads the owner, so a missing recipe is reported before a forbidden one
// and a denied caller never reaches a write.
type RecipeRepo struct {
	db  *sqlx.DB
	now clock
}

// NewRecipeRepo returns a RecipeRepo over db.
func NewRecipeRepo(db *sqlx.DB) *RecipeRepo { return &RecipeRepo{db: db} }

// WithClock returns a copy of r that stamps times from now.
func (r *RecipeRepo) WithClock(now func() time.Time) *RecipeRepo {
	return &RecipeRepo{db: r.db, now: now}
}

const recipeSelect = `SELECT r.id, r.title, r.description, r.instructions, r.ingredients,
       r.prep_minutes, r.cook_minutes, r.servings, r.difficulty, r.image_url,
       r.is_active, r.created_at, r.updated_at,
       r.user_id, u.username AS owner_username,
       r.category_id, c.name AS category_name,
       (SELECT COUNT(*) FROM comments cm WHERE cm.recipe_id = r.id) AS comment_count,
       (SELECT COALESCE(AVG(rt.score), 0) FROM ratings rt WHERE rt.recipe_id = r.id) AS average_rating
FROM recipes r
JOIN users u ON u.id = r.user_id
JOIN categories c ON c.id = r.category_id`

// Create inserts a recipe owned by ownerID.  f must already have passed
// ValidateCreate.  A category that does not exist yields ErrUnknownCategory.
func (r *RecipeRepo) Create(ctx context.Context, ownerID uint64, f model.RecipeFields) (model.RecipeView, error) {
	id, err := r.create(ctx, ownerID, f)
	if err != nil {
		return model.RecipeView{}, err
	}
	return r.Get(ctx, id)
}

func (r *RecipeRepo) create(ctx context.Context, ownerID uint64, f model.RecipeFields) (id uint64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = requireCategory(ctx, tx, deref(f.CategoryID)); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (title, description, instructions, ingredients, prep_minutes, cook_minutes,
		                      servings, difficulty, image_url, is_active, created_at, user_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(deref(f.Title)), deref(f.Description), deref(f.Instructions), deref(f.Ingredients),
		f.PrepMinutes, f.CookMinutes, f.Servings, deref(f.Difficulty), deref(f.ImageURL),
		true, r.now.now(), ownerID, deref(f.CategoryID))
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrUnknownCategory
		}
		return 0, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	id = uint64(lastID)

	if f.IngredientLines != nil {
		if err = insertLines(ctx, tx, id, *f.IngredientLines); err != nil {
			return 0, err
		}
	}
	if f.Images != nil {
		if err = insertImages(ctx, tx, id, *f.Images); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// Get returns one recipe with its category, owner and children resolved.
func (r *RecipeRepo) Get(ctx context.Context, id uint64) (model.RecipeView, error) {
	var v model.RecipeView
	err := r.db.GetContext(ctx, &v, recipeSelect+" WHERE r.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	out := []model.RecipeView{v}
	if err := r.attachChildren(ctx, out); err != nil {
		return v, err
	}
	return out[0], nil
}

// List returns every recipe matching the optional filters, newest first.
// Inactive recipes are included.
func (r *RecipeRepo) List(ctx context.Context, f model.RecipeFilter) ([]model.RecipeView, error) {
	var (
		where []string
		args  []any
	)
	if d := strings.TrimSpace(f.Difficulty); d != "" {
		where = append(where, "r.difficulty = ?")
		args = append(args, d)
	}
	if f.CategoryID != 0 {
		where = append(where, "r.category_id = ?")
		args = append(args, f.CategoryID)
	}
	q := recipeSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return r.selectViews(ctx, q+" ORDER BY r.created_at DESC, r.id DESC", args...)
}

// ListByOwner returns the owner's active recipes, newest first.
func (r *RecipeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.RecipeView, error) {
	return r.selectViews(ctx,
		recipeSelect+" WHERE r.user_id = ? AND r.is_active = ? ORDER BY r.created_at DESC, r.id DESC",
		ownerID, true)
}

// ListFavorites returns the recipes userID has favorited, most recently
// favorited first.
func (r *RecipeRepo) ListFavorites(ctx context.Context, userID uint64) ([]model.RecipeView, error) {
	return r.selectViews(ctx,
		recipeSelect+" JOIN favorites f ON f.recipe_id = r.id WHERE f.user_id = ? ORDER BY f.created_at DESC, f.id DESC",
		userID)
}

// Update overwrites the supplied fields of recipe id.  It returns
// ErrNotFound, auth.ErrForbidden or ErrUnknownCategory without writing.
// Owner and creation time never change.
func (r *RecipeRepo) Update(ctx context.Context, id uint64, caller auth.Identity, f model.RecipeFields) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = authorizeRecipe(ctx, tx, id, caller); err != nil {
		return err
	}
	if f.CategoryID != nil {
		if err = requireCategory(ctx, tx, *f.CategoryID); err != nil {
			return err
		}
	}

	set := []string{"updated_at = ?"}
	args := []any{r.now.now()}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if f.Title != nil {
		add("title", strings.TrimSpace(*f.Title))
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.Instructions != nil {
		add("instructions", *f.Instructions)
	}
	if f.Ingredients != nil {
		add("ingredients", *f.Ingredients)
	}
	if f.CategoryID != nil {
		add("category_id", *f.CategoryID)
	}
	if f.PrepMinutes != nil {
		add("prep_minutes", *f.PrepMinutes)
	}
	if f.CookMinutes != nil {
		add("cook_minutes", *f.CookMinutes)
	}
	if f.Servings != nil {
		add("servings", *f.Servings)
	}
	if f.Difficulty != nil {
		add("difficulty", *f.Difficulty)
	}
	if f.ImageURL != nil {
		add("image_url", *f.ImageURL)
	}
	args = append(args, id)
	if _, err = tx.ExecContext(ctx, "UPDATE recipes SET "+strings.Join(set, ", ")+" WHERE id = ?", args...); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownCategory
		}
		return err
	}

	if f.IngredientLines != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE recipe_id = ?", id); err != nil {
			return err
		}
		if err = insertLines(ctx, tx, id, *f.IngredientLines); err != nil {
			return err
		}
	}
	if f.Images != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM recipe_images WHERE recipe_id = ?", id); err != nil {
			return err
		}
		if err = insertImages(ctx, tx, id, *f.Images); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes recipe id.  Comments, ratings, favorites, images and
// ingredient lines go with it through ON DELETE CASCADE.
func (r *RecipeRepo) Delete(ctx context.Context, id uint64, caller auth.Identity) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = authorizeRecipe(ctx, tx, id, caller); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	return err
}

// Deactivate hides recipe id from its owner's public listing.
func (r *RecipeRepo) Deactivate(ctx context.Context, id uint64, caller auth.Identity) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = authorizeRecipe(ctx, tx, id, caller); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE recipes SET is_active = ?, updated_at = ? WHERE id = ?",
		false, r.now.now(), id)
	return err
}

// authorizeRecipe loads the owner of recipe id inside tx and applies the
// ownership guard.
func authorizeRecipe(ctx context.Context, tx *sqlx.Tx, id uint64, caller auth.Identity) error {
	var ownerID uint64
	err := tx.GetContext(ctx, &ownerID, "SELECT user_id FROM recipes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return auth.Authorize(caller, ownerID)
}

func requireCategory(ctx context.Context, tx *sqlx.Tx, categoryID uint64) error {
	var n int
	if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM categories WHERE id = ?", categoryID); err != nil {
		return err
	}
	if n == 0 {
		return ErrUnknownCategory
	}
	return nil
}

func insertLines(ctx context.Context, tx *sqlx.Tx, recipeID uint64, lines []model.IngredientLine) error {
	for _, l := range lines {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO recipe_ingredients (recipe_id, name, amount, unit) VALUES (?, ?, ?, ?)",
			recipeID, strings.TrimSpace(l.Name), l.Amount, strings.TrimSpace(l.Unit)); err != nil {
			return fmt.Errorf("insert ingredient line: %w", err)
		}
	}
	return nil
}

func insertImages(ctx context.Context, tx *sqlx.Tx, recipeID uint64, images []model.Image) error {
	for _, img := range images {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO recipe_images (recipe_id, file_name, url, is_primary) VALUES (?, ?, ?, ?)",
			recipeID, img.FileName, img.URL, img.IsPrimary); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	return nil
}

func (r *RecipeRepo) selectViews(ctx context.Context, q string, args ...any) ([]model.RecipeView, error) {
	out := []model.RecipeView{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	if err := r.attachChildren(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

type lineRow struct {
	RecipeID uint64 `db:"recipe_id"`
	model.IngredientLine
}

type imageRow struct {
	RecipeID uint64 `db:"recipe_id"`
	model.Image
}

// attachChildren loads ingredient lines and images for views in two
// queries and fills them in place.
func (r *RecipeRepo) attachChildren(ctx context.Context, views []model.RecipeView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]uint64, len(views))
	index := make(map[uint64]int, len(views))
	for i := range views {
		ids[i] = views[i].ID
		index[views[i].ID] = i
		views[i].IngredientLines = []model.IngredientLine{}
		views[i].Images = []model.Image{}
	}

	q, args, err := sqlx.In("SELECT recipe_id, id, name, amount, unit FROM recipe_ingredients WHERE recipe_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var lines []lineRow
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("load ingredient lines: %w", err)
	}
	for _, l := range lines {
		i := index[l.RecipeID]
		views[i].IngredientLines = append(views[i].IngredientLines, l.IngredientLine)
	}

	q, args, err = sqlx.In("SELECT recipe_id, id, file_name, url, is_primary FROM recipe_images WHERE recipe_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var images []imageRow
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for _, img := range images {
		i := index[img.RecipeID]
		views[i].Images = append(views[i].Images, img.Image)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
