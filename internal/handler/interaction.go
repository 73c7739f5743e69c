package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/model"
	"github.com/iliyamo/recipe-sharing-api/internal/queue"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
	"github.com/iliyamo/recipe-sharing-api/internal/service"
)

// InteractionHandler serves comments, ratings and favorites.
type InteractionHandler struct {
	Interactions *repository.InteractionRepo
	Recipes      *repository.RecipeRepo
	Log          zerolog.Logger

	events emitter
}

func NewInteractionHandler(i *repository.InteractionRepo, r *repository.RecipeRepo, pub service.Publisher, log zerolog.Logger) *InteractionHandler {
	return &InteractionHandler{Interactions: i, Recipes: r, Log: log, events: emitter{pub: pub, log: log}}
}

// ListComments handles GET /recipes/:id/comments, newest first.
func (h *InteractionHandler) ListComments(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	out, err := h.Interactions.ListComments(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// AddComment handles POST /recipes/:id/comments.
func (h *InteractionHandler) AddComment(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in model.CommentInput
	if err := bind(c, &in); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	cm, err := h.Interactions.AddComment(ctx, id, me.ID, in.Body)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.events.emit(c.Request().Context(), queue.ActivityEvent{
		Type: queue.CommentAdded, UserID: me.ID, Username: me.Username, RecipeID: id,
	})
	return c.JSON(http.StatusCreated, cm)
}

// AddRating handles POST /recipes/:id/ratings.  One rating per user and
// recipe; a second one is 409.
func (h *InteractionHandler) AddRating(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in model.RatingInput
	if err := bind(c, &in); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	r, err := h.Interactions.AddRating(ctx, id, me.ID, in.Score)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.events.emit(c.Request().Context(), queue.ActivityEvent{
		Type: queue.RatingAdded, UserID: me.ID, Username: me.Username, RecipeID: id,
	})
	return c.JSON(http.StatusCreated, r)
}

// AddFavorite handles POST /recipes/:id/favorite.
func (h *InteractionHandler) AddFavorite(c echo.Context) error {
	me, id, err := h.target(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Interactions.AddFavorite(ctx, id, me); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"tarifId": id, "favori": true})
}

// RemoveFavorite handles DELETE /recipes/:id/favorite.
func (h *InteractionHandler) RemoveFavorite(c echo.Context) error {
	me, id, err := h.target(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Interactions.RemoveFavorite(ctx, id, me); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FavoriteStatus handles GET /recipes/:id/favorite.
func (h *InteractionHandler) FavoriteStatus(c echo.Context) error {
	me, id, err := h.target(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	ok, err := h.Interactions.IsFavorite(ctx, id, me)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tarifId": id, "favori": ok})
}

// ListFavorites handles GET /favorites for the caller.
func (h *InteractionHandler) ListFavorites(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	out, err := h.Recipes.ListFavorites(ctx, me.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InteractionHandler) target(c echo.Context) (userID, recipeID uint64, err error) {
	me, err := caller(c)
	if err != nil {
		return 0, 0, err
	}
	recipeID, err = idParam(c, "id")
	return me.ID, recipeID, err
}
