package httputil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taskboard/pkg/domain-errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db failed")
		body := decodeError(t, w)
		assert.Equal(t, "internal_error", body.Error)
		assert.Empty(t, body.ErrorDescription)
		assert.Empty(t, body.Errors)
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, io.ErrUnexpectedEOF)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w).Error)
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "bad_request", body.Error)
		assert.Equal(t, "invalid input", body.ErrorDescription)
		assert.Equal(t, []string{"invalid input"}, body.Errors)
	})

	t.Run("validation lists every field message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewValidation([]string{
			dErrors.RequiredField("BoardId"),
			dErrors.RequiredField("ColumnTitle"),
		}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "validation", body.Error)
		assert.Equal(t, []string{
			dErrors.RequiredField("BoardId"),
			dErrors.RequiredField("ColumnTitle"),
		}, body.Errors)
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeValidation:     http.StatusBadRequest,
		dErrors.CodeRequiredField:  http.StatusBadRequest,
		dErrors.CodeInvalidRange:   http.StatusBadRequest,
		dErrors.CodeNotFound:       http.StatusNotFound,
		dErrors.CodeAlreadyPresent: http.StatusConflict,
		dErrors.CodeConflict:       http.StatusConflict,
		dErrors.CodeUnauthorized:   http.StatusUnauthorized,
		dErrors.CodeForbidden:      http.StatusForbidden,
		dErrors.CodeTimeout:        http.StatusGatewayTimeout,
		dErrors.CodeInternal:       http.StatusInternalServerError,
		dErrors.Code("unknown"):    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), string(code))
	}
}

type greetRequest struct {
	Name string `json:"name"`
}

func (r *greetRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *greetRequest) Validate() error {
	if r.Name == "" {
		return dErrors.NewValidation([]string{dErrors.RequiredField("Name")})
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	decode := func(body string) (*greetRequest, bool, *httptest.ResponseRecorder) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[greetRequest](w, r, logger, context.Background(), "req-1")
		return req, ok, w
	}

	t.Run("normalizes a valid body", func(t *testing.T) {
		req, ok, _ := decode(`{"name":"  Ada  "}`)
		require.True(t, ok)
		assert.Equal(t, "Ada", req.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		_, ok, w := decode(``)
		require.False(t, ok)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body is required", decodeError(t, w).ErrorDescription)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, ok, w := decode(`{"name":`)
		require.False(t, ok)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeError(t, w).ErrorDescription)
	})

	t.Run("validation failure", func(t *testing.T) {
		_, ok, w := decode(`{"name":"   "}`)
		require.False(t, ok)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{dErrors.RequiredField("Name")}, decodeError(t, w).Errors)
	})
}
