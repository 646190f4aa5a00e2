package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405.000000000")

	toyama := &domain.FortuneResult{
		Name:         "富山県",
		Capital:      "富山市",
		CitizenDay:   &domain.MonthDay{Month: 5, Day: 9},
		HasCoastLine: true,
		LogoURL:      "https://japan-map.com/wp-content/uploads/toyama.png",
		Brief:        "富山県は日本海に面した県です。",
	}
	nara := &domain.FortuneResult{
		Name:    "奈良県",
		Capital: "奈良市",
		LogoURL: "https://japan-map.com/wp-content/uploads/nara.png",
		Brief:   "奈良県は海に面していません。",
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, key, toyama)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, toyama, loaded)
	})

	t.Run("Overwrite Keeps Latest Only", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, toyama))
		require.NoError(t, store.Save(ctx, key, nara))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, nara, loaded)
		assert.Nil(t, loaded.CitizenDay, "absent citizen day must stay absent")
	})

	t.Run("Loaded Value Is Isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, toyama))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.Name = "mutated"
		loaded.CitizenDay.Day = 1

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "富山県", again.Name)
		assert.Equal(t, 9, again.CitizenDay.Day)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, toyama))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Delete of a missing key should be a no-op")
	})
}
