package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

func TestRecipeRepo_CreateAndGet(t *testing.T) {
	db, ctx := setup(t)
	chef := newUser(t, db, "chef1")
	repo := NewRecipeRepo(db)

	f := soup()
	f.PrepMinutes = ptr(10)
	f.Difficulty = ptr("Kolay")
	f.IngredientLines = &[]model.IngredientLine{{Name: "Su", Amount: 1.5, Unit: "litre"}}
	f.Images = &[]model.Image{{FileName: "soup.jpg", URL: "https://img.example.com/soup.jpg", IsPrimary: true}}

	created, err := repo.Create(ctx, chef.ID, f)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, chef.ID, created.OwnerID)
	assert.Equal(t, "chef1", created.OwnerUsername)
	assert.Equal(t, "Çorbalar", created.CategoryName)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.UpdatedAt)
	assert.Nil(t, created.CookMinutes)
	require.NotNil(t, created.PrepMinutes)
	assert.Equal(t, 10, *created.PrepMinutes)
	require.Len(t, created.IngredientLines, 1)
	assert.Equal(t, "Su", created.IngredientLines[0].Name)
	assert.InDelta(t, 1.5, created.IngredientLines[0].Amount, 0.001)
	require.Len(t, created.Images, 1)
	assert.True(t, created.Images[0].IsPrimary)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeRepo_UnknownCategory(t *testing.T) {
	db, ctx := setup(t)
	chef := newUser(t, db, "chef1")
	f := soup()
	f.CategoryID = ptr(uint64(404))

	_, err := NewRecipeRepo(db).Create(ctx, chef.ID, f)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM recipes"))
}

func TestRecipeRepo_ListFilters(t *testing.T) {
	db, ctx := setup(t)
	chef := newUser(t, db, "chef1")
	repo := NewRecipeRepo(db)

	mk := func(title, difficulty string, category uint64) {
		f := soup()
		f.Title, f.Difficulty, f.CategoryID = ptr(title), ptr(difficulty), ptr(category)
		_, err := repo.Create(ctx, chef.ID, f)
		require.NoError(t, err)
	}
	mk("Mercimek", "Kolay", 1)
	mk("Ezogelin", "Orta", 1)
	mk("Baklava", "Zor", 4)
	mk("Sütlaç", "Kolay", 4)

	all, err := repo.List(ctx, model.RecipeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	easy, err := repo.List(ctx, model.RecipeFilter{Difficulty: "Kolay"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mercimek", "Sütlaç"}, titles(easy))

	desserts, err := repo.List(ctx, model.RecipeFilter{CategoryID: 4})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Baklava", "Sütlaç"}, titles(desserts))

	both, err := repo.List(ctx, model.RecipeFilter{Difficulty: "Kolay", CategoryID: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sütlaç"}, titles(both))

	none, err := repo.List(ctx, model.RecipeFilter{CategoryID: 3})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func titles(vs []model.RecipeView) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Title
	}
	return out
}

func TestRecipeRepo_ListByOwnerNewestFirstActiveOnly(t *testing.T) {
	db, ctx := setup(t)
	chef := newUser(t, db, "chef1")
	other := newUser(t, db, "chef2")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo := NewRecipeRepo(db).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	})

	var ids []uint64
	for _, title := range []string{"First", "Second", "Third"} {
		f := soup()
		f.Title = ptr(title)
		v, err := repo.Create(ctx, chef.ID, f)
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	_, err := repo.Create(ctx, other.ID, soup())
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, ids[1], chef))

	mine, err := repo.ListByOwner(ctx, chef.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "First"}, titles(mine))
}

func TestRecipeRepo_UpdateOwnership(t *testing.T) {
	db, ctx := setup(t)
	owner := newUser(t, db, "owner")
	intruder := newUser(t, db, "intruder")
	repo := NewRecipeRepo(db)

	v, err := repo.Create(ctx, owner.ID, soup())
	require.NoError(t, err)

	err = repo.Update(ctx, v.ID, intruder, model.RecipeFields{Title: ptr("Hacked")})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	got, err := repo.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Title)
	assert.Nil(t, got.UpdatedAt)

	err = repo.Update(ctx, 9999, intruder, model.RecipeFields{Title: ptr("Ghost")})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Update(ctx, v.ID, owner, model.RecipeFields{Title: ptr("Tomato Soup"), Servings: ptr(4)}))
	got, err = repo.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Soup", got.Title)
	assert.Equal(t, "Boil", got.Instructions, "unsupplied fields are kept")
	require.NotNil(t, got.Servings)
	assert.Equal(t, 4, *got.Servings)
	assert.NotNil(t, got.UpdatedAt)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.True(t, v.CreatedAt.Equal(got.CreatedAt))
}

func TestRecipeRepo_UpdateReplacesChildrenAndChecksCategory(t *testing.T) {
	db, ctx := setup(t)
	owner := newUser(t, db, "owner")
	repo := NewRecipeRepo(db)

	f := soup()
	f.IngredientLines = &[]model.IngredientLine{{Name: "Su"}, {Name: "Tuz"}}
	v, err := repo.Create(ctx, owner.ID, f)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, v.ID, owner, model.RecipeFields{
		IngredientLines: &[]model.IngredientLine{{Name: "Domates", Amount: 3, Unit: "adet"}},
	}))
	got, err := repo.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.IngredientLines, 1)
	assert.Equal(t, "Domates", got.IngredientLines[0].Name)

	err = repo.Update(ctx, v.ID, owner, model.RecipeFields{CategoryID: ptr(uint64(404))})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRecipeRepo_DeleteCascadesAndCategoryRestricts(t *testing.T) {
	db, ctx := setup(t)
	owner := newUser(t, db, "owner")
	fan := newUser(t, db, "fan")
	recipes := NewRecipeRepo(db)
	interactions := NewInteractionRepo(db)
	categories := NewCategoryRepo(db)

	f := soup()
	f.IngredientLines = &[]model.IngredientLine{{Name: "Su"}}
	f.Images = &[]model.Image{{URL: "a.jpg"}}
	v, err := recipes.Create(ctx, owner.ID, f)
	require.NoError(t, err)

	_, err = interactions.AddComment(ctx, v.ID, fan.ID, "Harika")
	require.NoError(t, err)
	_, err = interactions.AddRating(ctx, v.ID, fan.ID, 5)
	require.NoError(t, err)
	require.NoError(t, interactions.AddFavorite(ctx, v.ID, fan.ID))

	assert.ErrorIs(t, categories.Delete(ctx, 1), ErrCategoryInUse)

	assert.ErrorIs(t, recipes.Delete(ctx, v.ID, fan), auth.ErrForbidden)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM comments"))

	require.NoError(t, recipes.Delete(ctx, v.ID, owner))
	for _, table := range []string{"recipes", "comments", "ratings", "favorites", "recipe_images", "recipe_ingredients"} {
		assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM "+table), table)
	}
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM users"), "users survive")
	assert.ErrorIs(t, recipes.Delete(ctx, v.ID, owner), ErrNotFound)

	require.NoError(t, categories.Delete(ctx, 1))
}

func TestRecipeRepo_DeactivateOwnership(t *testing.T) {
	db, ctx := setup(t)
	owner := newUser(t, db, "owner")
	other := newUser(t, db, "other")
	repo := NewRecipeRepo(db)
	v, err := repo.Create(ctx, owner.ID, soup())
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Deactivate(ctx, v.ID, other), auth.ErrForbidden)
	assert.ErrorIs(t, repo.Deactivate(ctx, 9999, owner), ErrNotFound)
	require.NoError(t, repo.Deactivate(ctx, v.ID, owner))

	got, err := repo.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
