package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

// CategoryRepo manages the shared, unowned category list.
type CategoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo returns a CategoryRepo over db.
func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categorySelect = `SELECT c.id, c.name, c.description,
       (SELECT COUNT(*) FROM recipes r WHERE r.category_id = c.id) AS recipe_count
FROM categories c`

// List returns all categories ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]model.CategoryView, error) {
	out := []model.CategoryView{}
	if err := r.db.SelectContext(ctx, &out, categorySelect+" ORDER BY c.id"); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one category or ErrNotFound.
func (r *CategoryRepo) Get(ctx context.Context, id uint64) (model.CategoryView, error) {
	var c model.CategoryView
	err := r.db.GetContext(ctx, &c, categorySelect+" WHERE c.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// Create inserts a category and returns it.
func (r *CategoryRepo) Create(ctx context.Context, in model.CategoryInput) (model.CategoryView, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name, description) VALUES (?, ?)",
		strings.TrimSpace(in.Name), in.Description)
	if err != nil {
		return model.CategoryView{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.CategoryView{}, err
	}
	return r.Get(ctx, uint64(id))
}

// Update overwrites name and description.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, in model.CategoryInput) error {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM categories WHERE id = ?", id); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	_, err := r.db.ExecContext(ctx, "UPDATE categories SET name = ?, description = ? WHERE id = ?",
		strings.TrimSpace(in.Name), in.Description, id)
	return err
}

// Delete removes a category no recipe references.  Referenced categories
// yield ErrCategoryInUse; the RESTRICT foreign key backs the check.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) (err error) {
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

	var exists, used int
	if err = tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM categories WHERE id = ?", id); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	if err = tx.GetContext(ctx, &used, "SELECT COUNT(*) FROM recipes WHERE category_id = ?", id); err != nil {
		return err
	}
	if used > 0 {
		return ErrCategoryInUse
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return err
	}
	return nil
}
