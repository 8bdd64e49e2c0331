package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/viewer"
)

func TestCreatorCreate(t *testing.T) {
	env := newTestEnv(t)
	v := env.user(t, "alice")

	c, err := env.creators.Create(v, "Alice Writes", "alice-writes")
	require.NoError(t, err)
	assert.Len(t, c.Key, models.CreatorKeySize)
	assert.Equal(t, v.Key(), c.UserKey)

	_, err = env.creators.Create(v, "Nope", "x")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.creators.Create(v, "Dup", "alice-writes")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.creators.Create(viewer.Anonymous(), "Anon", "anon-handle")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestCreatorHandleUniqueCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	created, err := env.creators.Create(alice, "Acme", "acme")
	require.NoError(t, err)

	// A case-variant of a taken handle is still a duplicate.
	_, err = env.creators.Create(bob, "Acme Shout", "ACME")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Mixed-case input is stored normalized.
	mixed, err := env.creators.Create(bob, "Bob Builds", "BobBuilds")
	require.NoError(t, err)
	assert.Equal(t, "bobbuilds", mixed.Handle)

	_, err = env.creators.Update(context.Background(), bob, mixed.Key, CreatorPatch{Handle: strPtr("AcMe")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := env.creators.GetByHandle("AcMe")
	require.NoError(t, err)
	assert.Equal(t, created.Key, got.Key)
}

func TestCreatorGetByHandleIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	v := env.user(t, "alice")
	created := env.creator(t, v, "Alice Writes", "AliceWrites")

	got, err := env.creators.GetByHandle("alicewrites")
	require.NoError(t, err)
	assert.Equal(t, created.Key, got.Key)

	_, err = env.creators.GetByHandle("missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreatorUpdateOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	other := env.user(t, "bob")
	c := env.creator(t, owner, "Alice Writes", "alice-writes")

	_, err := env.creators.Update(context.Background(), other, c.Key, CreatorPatch{Name: strPtr("Hijacked")})
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	updated, err := env.creators.Update(context.Background(), owner, c.Key, CreatorPatch{
		Name:        strPtr("Alice Writes Daily"),
		Description: strPtr("tech stories"),
		Social: []models.SocialLink{
			{ID: 1, Name: "github", URL: "https://github.com/alice"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Writes Daily", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "tech stories", *updated.Description)
	require.Len(t, updated.SocialLinks(), 1)
	assert.Equal(t, "github", updated.SocialLinks()[0].Name)
}

func TestCreatorFollowToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	fan := env.user(t, "bob")
	c := env.creator(t, owner, "Alice Writes", "alice-writes")

	_, following, notify, err := env.creators.Follow(fan, c.Key, models.NotifyPersonalized)
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, models.NotifyPersonalized, notify)

	n, err := env.creators.FollowersCount(c.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	followed, err := env.creators.FollowedBy(fan, c.Key)
	require.NoError(t, err)
	assert.True(t, followed)

	// Second call unfollows.
	_, following, notify, err = env.creators.Follow(fan, c.Key, "")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Empty(t, notify)

	n, err = env.creators.FollowersCount(c.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, _, _, err = env.creators.Follow(fan, c.Key, "hourly")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreatorSoftDeleteHidesFromLookups(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	c := env.creator(t, owner, "Alice Writes", "alice-writes")

	deleted, err := env.creators.Delete(owner, c.Key)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	require.NotNil(t, deleted.DeletedAt)

	_, err = env.creators.Get(c.Key)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Row survives in the table.
	var raw models.Creator
	require.NoError(t, env.db.First(&raw, "key = ?", c.Key).Error)
	assert.True(t, raw.IsDeleted)
}
