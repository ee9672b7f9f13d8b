package catalog

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code, body.Error.Message
}

func TestWriteStoreErrorDuplicateKey(t *testing.T) {
	rec := httptest.NewRecorder()
	dup := fmt.Errorf("insert category: %w", &pgconn.PgError{Code: "23505", ConstraintName: "categories_slug_key"})
	writeStoreError(rec, "category", dup)

	require.Equal(t, 409, rec.Code)
	code, message := decodeErrorBody(t, rec)
	require.Equal(t, "CONFLICT", code)
	require.Equal(t, "category already exists", message)
}

func TestWriteStoreErrorNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	writeStoreError(rec, "brand", ErrNotFound)

	require.Equal(t, 404, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	require.Equal(t, "NOT_FOUND", code)
}

func TestWriteStoreErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeStoreError(rec, "product", fmt.Errorf("connection reset"))

	require.Equal(t, 500, rec.Code)
	code, message := decodeErrorBody(t, rec)
	require.Equal(t, "INTERNAL", code)
	require.Equal(t, "internal error", message)
}
