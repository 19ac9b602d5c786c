package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/pkg/database"
	"biodex/pkg/models"
)

func TestRepoAddListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(database.OpenTest(t))

	require.NoError(t, repo.Add(ctx, models.Favorite{SessionID: "s1", Name: "Onça-pintada", ScientificName: "Panthera onca"}))
	require.NoError(t, repo.Add(ctx, models.Favorite{SessionID: "s1", Name: "Tucano", PhotoURL: "https://img/t.jpg"}))
	require.NoError(t, repo.Add(ctx, models.Favorite{SessionID: "s2", Name: "Tucano"}))

	items, total, err := repo.List(ctx, "s1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Tucano", items[0].Name)
	assert.Equal(t, "Onça-pintada", items[1].Name)

	// re-adding refreshes the row instead of duplicating it
	require.NoError(t, repo.Add(ctx, models.Favorite{SessionID: "s1", Name: "Tucano", PhotoURL: "https://img/t2.jpg"}))
	got, err := repo.Get(ctx, "s1", "Tucano")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://img/t2.jpg", got.PhotoURL)

	ok, err := repo.Delete(ctx, "s1", "Tucano")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, "s1", "Tucano")
	require.NoError(t, err)
	assert.False(t, ok)

	missing, err := repo.Get(ctx, "s1", "Tucano")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// other sessions are untouched
	other, total, err := repo.List(ctx, "s2", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Tucano", other[0].Name)
}

func TestRepoDeleteSession(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(database.OpenTest(t))

	for _, name := range []string{"Arara", "Capivara", "Jacaré"} {
		require.NoError(t, repo.Add(ctx, models.Favorite{SessionID: "gone", Name: name}))
	}
	require.NoError(t, repo.Add(ctx, models.Favorite{SessionID: "kept", Name: "Arara"}))

	n, err := repo.DeleteSession(ctx, "gone")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, total, err := repo.List(ctx, "gone", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	_, total, err = repo.List(ctx, "kept", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
