package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/pkg/database"
)

func TestRepoCreateListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(database.OpenTest(t))

	first, err := repo.Create(ctx, "s1", "Tucano", "bico enorme")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Positive(t, first.ID)
	assert.Equal(t, "Tucano", first.Animal)

	second, err := repo.Create(ctx, "s1", "Capivara", "em grupo perto do lago")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "s2", "Tucano", "outra sessão")
	require.NoError(t, err)

	all, err := repo.List(ctx, "s1", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	tucano, err := repo.List(ctx, "s1", "Tucano", 20, 0)
	require.NoError(t, err)
	require.Len(t, tucano, 1)
	assert.Equal(t, "bico enorme", tucano[0].Text)

	// a session cannot read or delete another session's note
	foreign, err := repo.GetByID(ctx, first.ID, "s2")
	require.NoError(t, err)
	assert.Nil(t, foreign)
	ok, err := repo.Delete(ctx, first.ID, "s2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, first.ID, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.DeleteSession(ctx, "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := repo.List(ctx, "s2", "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
