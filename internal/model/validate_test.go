package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	names := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestRecipeFields_ValidateCreate(t *testing.T) {
	ok := RecipeFields{
		Title:        ptr("Soup"),
		Instructions: ptr("Boil"),
		Ingredients:  ptr("Water"),
		CategoryID:   ptr(uint64(1)),
	}
	require.NoError(t, ok.ValidateCreate())

	err := RecipeFields{}.ValidateCreate()
	assert.ElementsMatch(t, []string{"baslik", "hazirlanis", "malzemeler", "kategoriId"}, fieldNames(t, err))

	short := ok
	short.Title = ptr("ab")
	assert.Equal(t, []string{"baslik"}, fieldNames(t, short.ValidateCreate()))

	long := ok
	long.Title = ptr(strings.Repeat("x", 201))
	assert.Equal(t, []string{"baslik"}, fieldNames(t, long.ValidateCreate()))
}

func TestRecipeFields_TitleCountsRunes(t *testing.T) {
	f := RecipeFields{Title: ptr("Çay")}
	assert.NoError(t, f.ValidateUpdate())
}

func TestRecipeFields_ValidateUpdate(t *testing.T) {
	assert.NoError(t, RecipeFields{}.ValidateUpdate(), "empty update is a no-op")
	assert.NoError(t, RecipeFields{Difficulty: ptr("Kolay")}.ValidateUpdate())

	err := RecipeFields{
		Instructions: ptr("   "),
		PrepMinutes:  ptr(0),
		CategoryID:   ptr(uint64(0)),
	}.ValidateUpdate()
	assert.ElementsMatch(t, []string{"hazirlanis", "hazirlikSuresi", "kategoriId"}, fieldNames(t, err))
}

func TestRecipeFields_NestedLines(t *testing.T) {
	lines := []IngredientLine{{Name: "Un", Amount: 2, Unit: "su bardağı"}, {Name: "", Amount: -1}}
	err := RecipeFields{IngredientLines: &lines}.ValidateUpdate()
	assert.ElementsMatch(t,
		[]string{"malzemeListesi[1].malzemeAdi", "malzemeListesi[1].miktar"},
		fieldNames(t, err))
}

func TestRegisterRequest(t *testing.T) {
	good := RegisterRequest{Username: "chef1", Email: "chef1@example.com", Password: "pw123456", FullName: "Chef One"}
	require.NoError(t, Validate(good))

	bad := RegisterRequest{Username: "ab", Email: "nope", Password: "123"}
	assert.ElementsMatch(t, []string{"kullaniciAdi", "email", "sifre"}, fieldNames(t, Validate(bad)))
}

func TestRatingInput(t *testing.T) {
	assert.NoError(t, Validate(RatingInput{Score: 5}))
	assert.Error(t, Validate(RatingInput{Score: 6}))
	assert.Error(t, Validate(RatingInput{Score: 0}))
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("kategoriId", "unknown category")
	assert.Equal(t, "validation failed: kategoriId unknown category", err.Error())
}

func TestTrimmedLengths(t *testing.T) {
	padded := RegisterRequest{Username: "  ab  ", Email: "ab@example.com", Password: "pw123456"}
	assert.Equal(t, []string{"kullaniciAdi"}, fieldNames(t, Validate(padded)))

	padded.Username = "  abc  "
	assert.NoError(t, Validate(padded))

	short := RecipeFields{Title: ptr("  x  ")}
	assert.Equal(t, []string{"baslik"}, fieldNames(t, short.ValidateUpdate()))

	var ve *ValidationError
	require.ErrorAs(t, short.ValidateUpdate(), &ve)
	assert.Equal(t, "must be at least 3 characters", ve.Fields[0].Message)

	wide := RecipeFields{Title: ptr("   " + strings.Repeat("x", 200) + "   ")}
	assert.NoError(t, wide.ValidateUpdate())
}
