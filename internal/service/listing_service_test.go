package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/repository"
	"github.com/qs3c/ecomwords_server/internal/testutil"
)

func TestListingService_SaveAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	service := NewListingService(repository.NewListingRepository(db))

	user := testutil.TestUser(t, db)
	testutil.TestListing(t, db, user.Email, testutil.WithSavedAt(time.Now().Add(-time.Hour)))

	content := &model.GeneratedContent{
		Titles:      []string{"Copper Bottle 1L"},
		Description: "Ayurvedic copper bottle.",
		Bullets:     []string{"Leak proof"},
		Keywords:    []string{"copper", "bottle"},
	}
	saved, err := service.Save(user.Email, content, " Copper Bottle ")
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, "Copper Bottle", saved.ProductName)

	listings, err := service.List(user.Email)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, saved.ID, listings[0].ID)
	assert.Equal(t, *content, listings[0].Content())
}

func TestListingService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	service := NewListingService(repository.NewListingRepository(db))

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	listing := testutil.TestListing(t, db, owner.Email)

	assert.ErrorIs(t, service.Delete(other.Email, listing.ID), ErrListingNotFound)
	require.NoError(t, service.Delete(owner.Email, listing.ID))
	assert.ErrorIs(t, service.Delete(owner.Email, listing.ID), ErrListingNotFound)
}

func TestListingService_DeleteAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	service := NewListingService(repository.NewListingRepository(db))

	user := testutil.TestUser(t, db)
	testutil.TestListing(t, db, user.Email)
	testutil.TestListing(t, db, user.Email)

	require.NoError(t, service.DeleteAll(user.Email))

	listings, err := service.List(user.Email)
	require.NoError(t, err)
	assert.Empty(t, listings)
}
