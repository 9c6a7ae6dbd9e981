package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanintake/internal/reference"
	"loanintake/pkg/platform/sentinel"
)

func TestInMemoryCatalogStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	newStore := func() *InMemoryCatalogStore {
		s := NewInMemory()
		s.now = func() time.Time { return now }
		return s
	}

	t.Run("miss returns not found", func(t *testing.T) {
		_, err := newStore().Get(ctx, "banks")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("hit returns a copy", func(t *testing.T) {
		s := newStore()
		require.NoError(t, s.Set(ctx, "banks", []reference.Option{{Code: "BOBL", Label: "Bank of Bhutan"}}, time.Minute))

		got, err := s.Get(ctx, "banks")
		require.NoError(t, err)
		got[0].Label = "mutated"

		again, err := s.Get(ctx, "banks")
		require.NoError(t, err)
		assert.Equal(t, "Bank of Bhutan", again[0].Label)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		s := newStore()
		require.NoError(t, s.Set(ctx, "gewogs:THI", []reference.Option{{Code: "KAW", Label: "Kawang"}}, time.Minute))
		s.now = func() time.Time { return now.Add(time.Minute) }

		_, err := s.Get(ctx, "gewogs:THI")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
