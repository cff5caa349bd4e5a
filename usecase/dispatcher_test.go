package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
)

func TestDispatcher_Queries(t *testing.T) {
	d := NewDispatcher()
	d.RegisterQuery("double", func(_ context.Context, params interface{}) (interface{}, error) {
		n, err := Params[int]("double", params)
		if err != nil {
			return nil, err
		}
		return n * 2, nil
	})

	got, err := Query[int](context.Background(), d, "double", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Query[string](context.Background(), d, "double", 1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))

	_, err = Query[int](context.Background(), d, "double", "x")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = d.ExecuteQuery(context.Background(), "missing", nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))

	assert.Equal(t, []string{"double"}, d.Queries())
}

func TestDispatcher_Commands(t *testing.T) {
	d := NewDispatcher()
	var seen interface{}
	d.RegisterCommand("record", func(_ context.Context, payload interface{}) (interface{}, error) {
		seen = payload
		return nil, nil
	})

	_, err := d.ExecuteCommand(context.Background(), "record", "payload")
	require.NoError(t, err)
	assert.Equal(t, "payload", seen)

	_, err = d.ExecuteCommand(context.Background(), "missing", nil)
	assert.Error(t, err)
}
