package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tracker/domain"
)

func TestWriteError(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, domain.IsDomainError(writeError(unique, "project"), domain.ErrCodeConflict))

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, domain.IsDomainError(writeError(fk, "task"), domain.ErrCodeInvalid))

	down := errors.New("connection refused")
	assert.Same(t, down, writeError(down, "task"))

	other := &pgconn.PgError{Code: "57P01"}
	assert.Equal(t, error(other), writeError(other, "ticket"))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 500, clampLimit(0))
	assert.Equal(t, 500, clampLimit(10000))
	assert.Equal(t, 25, clampLimit(25))
}
