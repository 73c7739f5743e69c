package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
	"github.com/iliyamo/recipe-sharing-api/internal/queue"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
	"github.com/iliyamo/recipe-sharing-api/internal/service"
)

// RecipeHandler serves /recipes.  Reads are public; writes need a bearer
// token and, for an existing recipe, ownership.
type RecipeHandler struct {
	Recipes *repository.RecipeRepo
	Log     zerolog.Logger

	events emitter
}

func NewRecipeHandler(r *repository.RecipeRepo, pub service.Publisher, log zerolog.Logger) *RecipeHandler {
	return &RecipeHandler{Recipes: r, Log: log, events: emitter{pub: pub, log: log}}
}

// List handles GET /recipes?zorluk=&kategoriId=.
func (h *RecipeHandler) List(c echo.Context) error {
	filter := model.RecipeFilter{Difficulty: strings.TrimSpace(c.QueryParam("zorluk"))}
	if raw := c.QueryParam("kategoriId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return fail(c, h.Log, model.NewValidationError("kategoriId", "must be a positive integer"))
		}
		filter.CategoryID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Recipes.List(ctx, filter)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /recipes/:id.
func (h *RecipeHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	v, err := h.Recipes.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ListByUser handles GET /recipes/user/:userId.
func (h *RecipeHandler) ListByUser(c echo.Context) error {
	uid, err := idParam(c, "userId")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Recipes.ListByOwner(ctx, uid)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /recipes.  The caller becomes the owner.
func (h *RecipeHandler) Create(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var f model.RecipeFields
	if err := c.Bind(&f); err != nil {
		return fail(c, h.Log, err)
	}
	if err := f.ValidateCreate(); err != nil {
		return fail(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	v, err := h.Recipes.Create(ctx, me.ID, f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.events.emit(c.Request().Context(), queue.ActivityEvent{
		Type:     queue.RecipeCreated,
		UserID:   me.ID,
		Username: me.Username,
		RecipeID: v.ID,
		Title:    v.Title,
	})
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/recipes/%d", v.ID))
	return c.JSON(http.StatusCreated, v)
}

// Update handles PUT /recipes/:id as a partial overwrite.
func (h *RecipeHandler) Update(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var f model.RecipeFields
	if err := c.Bind(&f); err != nil {
		return fail(c, h.Log, err)
	}
	if err := f.ValidateUpdate(); err != nil {
		return fail(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Recipes.Update(ctx, id, me, f); err != nil {
		return fail(c, h.Log, err)
	}
	h.events.emit(c.Request().Context(), queue.ActivityEvent{
		Type: queue.RecipeUpdated, UserID: me.ID, Username: me.Username, RecipeID: id,
	})
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /recipes/:id.
func (h *RecipeHandler) Delete(c echo.Context) error {
	return h.ownerWrite(c, queue.RecipeDeleted, h.Recipes.Delete)
}

// Deactivate handles PUT /recipes/:id/deactivate.
func (h *RecipeHandler) Deactivate(c echo.Context) error {
	return h.ownerWrite(c, queue.RecipeDeactivated, h.Recipes.Deactivate)
}

func (h *RecipeHandler) ownerWrite(c echo.Context, event string, op func(context.Context, uint64, auth.Identity) error) error {
	me, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := op(ctx, id, me); err != nil {
		return fail(c, h.Log, err)
	}
	h.events.emit(c.Request().Context(), queue.ActivityEvent{
		Type: event, UserID: me.ID, Username: me.Username, RecipeID: id,
	})
	return c.NoContent(http.StatusNoContent)
}
