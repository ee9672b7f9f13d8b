package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"}
	require.True(t, UniqueViolation(dup))
	require.True(t, UniqueViolation(fmt.Errorf("insert product: %w", dup)))

	require.False(t, UniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, UniqueViolation(errors.New("connection reset")))
	require.False(t, UniqueViolation(nil))
}
