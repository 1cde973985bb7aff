package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/store"
)

func TestDraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := newPersonal(t)
	add(t, s, "Cash on Hand", "100", "USD")
	add(t, s, "Real Estate", "5000", "EUR")

	_, err := LoadDraft(ctx, st, s.PortfolioID, testDeps())
	assert.ErrorIs(t, err, ErrNoDraft)

	require.NoError(t, SaveDraft(ctx, st, s))
	got, err := LoadDraft(ctx, st, s.PortfolioID, testDeps())
	require.NoError(t, err)
	require.Len(t, got.Items(), 2)
	for i, it := range s.Items() {
		restored := got.Items()[i]
		assert.Equal(t, it.ID, restored.ID)
		assert.Equal(t, it.Classification, restored.Classification)
		assert.True(t, it.ConvertedAmount.Equal(restored.ConvertedAmount))
	}

	_, err = got.Answer(model.AnswerOperations, nil)
	require.NoError(t, err)
	require.NoError(t, SaveDraft(ctx, st, got))

	again, err := LoadDraft(ctx, st, s.PortfolioID, testDeps())
	require.NoError(t, err)
	assert.Zero(t, again.Unresolved())

	require.NoError(t, DiscardDraft(ctx, st, s.PortfolioID))
	require.NoError(t, DiscardDraft(ctx, st, s.PortfolioID))
	_, err = LoadDraft(ctx, st, s.PortfolioID, testDeps())
	assert.ErrorIs(t, err, ErrNoDraft)
}
