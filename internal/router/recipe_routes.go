package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/recipe-sharing-api/internal/handler"
)

// RegisterRecipes registers /recipes and /favorites.  Public reads go
// through the response cache; everything else needs a bearer token.
// Middleware is attached per route: a group with middleware would also
// catch unknown paths and answer them with 401.
func RegisterRecipes(e *echo.Echo, r *handler.RecipeHandler, i *handler.InteractionHandler, jwt, cache echo.MiddlewareFunc) {
	e.GET("/recipes", r.List, cache)
	e.GET("/recipes/:id", r.Get, cache)
	e.GET("/recipes/user/:userId", r.ListByUser, cache)
	e.GET("/recipes/:id/comments", i.ListComments, cache)

	e.POST("/recipes", r.Create, jwt)
	e.PUT("/recipes/:id", r.Update, jwt)
	e.DELETE("/recipes/:id", r.Delete, jwt)
	e.PUT("/recipes/:id/deactivate", r.Deactivate, jwt)

	e.POST("/recipes/:id/comments", i.AddComment, jwt)
	e.POST("/recipes/:id/ratings", i.AddRating, jwt)
	e.GET("/recipes/:id/favorite", i.FavoriteStatus, jwt)
	e.POST("/recipes/:id/favorite", i.AddFavorite, jwt)
	e.DELETE("/recipes/:id/favorite", i.RemoveFavorite, jwt)
	e.GET("/favorites", i.ListFavorites, jwt)
}
