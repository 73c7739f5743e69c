package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/model"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
)

// CategoryHandler serves /categories.  Categories have no owner.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
	Log        zerolog.Logger
}

func NewCategoryHandler(r *repository.CategoryRepo, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{Categories: r, Log: log}
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	out, err := h.Categories.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	v, err := h.Categories.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var in model.CategoryInput
	if err := bind(c, &in); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	v, err := h.Categories.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/categories/%d", v.ID))
	return c.JSON(http.StatusCreated, v)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in model.CategoryInput
	if err := bind(c, &in); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Categories.Update(ctx, id, in); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete refuses with 409 while any recipe is filed under the category.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Categories.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
