package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legaltrack/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty seed", func(t *testing.T) {
		_, err := NewInMemory("   ").Get(ctx)
		assert.ErrorIs(t, err, ErrNoToken)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		s := NewInMemory("seed")
		token, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "seed", token)

		require.NoError(t, s.Set(ctx, " rotated "))
		token, err = s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "rotated", token)

		require.NoError(t, s.Delete(ctx))
		_, err = s.Get(ctx)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("blank token rejected", func(t *testing.T) {
		assert.Error(t, NewInMemory("").Set(ctx, ""))
	})
}
