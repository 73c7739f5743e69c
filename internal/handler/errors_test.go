package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
)

func TestFail_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{repository.ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound, `{"error":"not found"}`},
		{repository.ErrConflict, http.StatusConflict, `{"error":"conflict"}`},
		{repository.ErrCategoryInUse, http.StatusConflict, `{"error":"category in use"}`},
		{auth.ErrForbidden, http.StatusForbidden, `{"error":"forbidden"}`},
		{auth.ErrUnauthenticated, http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{echo.NewHTTPError(http.StatusBadRequest, "syntax"), http.StatusBadRequest, `{"error":"invalid body"}`},
		{errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, `{"error":"internal error"}`},
		{
			repository.ErrUnknownCategory, http.StatusBadRequest,
			`{"error":"validation failed","fields":[{"field":"kategoriId","message":"unknown category"}]}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			var logs bytes.Buffer
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, fail(c, zerolog.New(&logs), tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
			if tc.status == http.StatusInternalServerError {
				assert.Contains(t, logs.String(), "connection refused")
				assert.NotContains(t, rec.Body.String(), "10.0.0.1")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestBind_RunsValidator(t *testing.T) {
	e := echo.New()
	e.Validator = Validator{}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"puan":9}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var in model.RatingInput
	err := bind(c, &in)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "puan", ve.Fields[0].Field)
}

func TestIDParam(t *testing.T) {
	e := echo.New()
	for raw, ok := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		id, err := idParam(c, "id")
		if ok {
			require.NoError(t, err, raw)
			assert.Equal(t, uint64(12), id)
		} else {
			assert.Error(t, err, raw)
		}
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		err    error
		status int
	}{{nil, http.StatusOK}, {errors.New("down"), http.StatusServiceUnavailable}} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
		require.NoError(t, Health(pingerFunc(func() error { return tc.err }))(c))
		assert.Equal(t, tc.status, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["status"])
	}
}

type pingerFunc func() error

func (f pingerFunc) PingContext(context.Context) error { return f() }
