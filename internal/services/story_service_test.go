package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/models"
)

func TestStoryCreateStartsAsDraft(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	other := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")

	story, err := env.stories.Create(owner, author.Key, strPtr("Go Generics in Practice"), nil)
	require.NoError(t, err)
	assert.Len(t, story.Key, models.StoryKeySize)
	assert.Len(t, story.Slug, models.SlugKeySize)
	assert.Equal(t, models.StateDraft, story.State)
	assert.Nil(t, story.PublishedAt)

	_, err = env.stories.Create(other, author.Key, strPtr("Not Yours"), nil)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestStoryCreateSlugHandling(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")

	// A client-supplied slug is honored as-is.
	story, err := env.stories.Create(owner, author.Key, strPtr("Titled"), strPtr("my-own-slug"))
	require.NoError(t, err)
	assert.Equal(t, "my-own-slug", story.Slug)

	// Title is optional; an absent slug gets a generated one.
	untitled, err := env.stories.Create(owner, author.Key, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, untitled.Title)
	assert.Len(t, untitled.Slug, models.SlugKeySize)

	_, err = env.stories.Create(owner, author.Key, nil, strPtr("my-own-slug"))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.stories.Create(owner, author.Key, nil, strPtr("   "))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStoryUpdateSlug(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Draft"), nil)
	require.NoError(t, err)
	other, err := env.stories.Create(owner, author.Key, strPtr("Other"), strPtr("taken-slug"))
	require.NoError(t, err)

	updated, err := env.stories.Update(context.Background(), owner, story.Key, StoryPatch{
		Slug: strPtr("fresh-slug"),
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh-slug", updated.Slug)

	bySlug, err := env.stories.GetBySlug("fresh-slug")
	require.NoError(t, err)
	assert.Equal(t, story.Key, bySlug.Key)

	_, err = env.stories.Update(context.Background(), owner, story.Key, StoryPatch{
		Slug: strPtr(other.Slug),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestStoryUpdateMergePatch(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Draft"), nil)
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.Category{Name: "engineering"}).Error)

	updated, err := env.stories.Update(context.Background(), owner, story.Key, StoryPatch{
		Title:     strPtr("Go Generics in Practice"),
		Content:   strPtr("body"),
		Tags:      []string{"go", "generics"},
		Category:  strPtr("engineering"),
		DoPublish: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Generics in Practice", updated.Title)
	assert.Equal(t, models.StatePublished, updated.State)
	require.NotNil(t, updated.PublishedAt)
	firstPublished := *updated.PublishedAt

	// Tags union: a later patch adds without replacing.
	updated, err = env.stories.Update(context.Background(), owner, story.Key, StoryPatch{
		Tags:      []string{"generics", "performance"},
		DoPublish: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, firstPublished.Unix(), updated.PublishedAt.Unix())

	var tags []*models.Tag
	require.NoError(t, env.db.Model(&models.Story{Key: story.Key}).Association("Tags").Find(&tags))
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.ElementsMatch(t, []string{"go", "generics", "performance"}, names)
}

func TestStoryUpdateUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Draft"), nil)
	require.NoError(t, err)

	_, err = env.stories.Update(context.Background(), owner, story.Key, StoryPatch{
		Category: strPtr("does-not-exist"),
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStoryClapToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Story"), nil)
	require.NoError(t, err)

	_, clapped, err := env.stories.Clap(reader, story.Key)
	require.NoError(t, err)
	assert.True(t, clapped)

	n, err := env.stories.ClapsCount(story.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	mine, err := env.stories.ClappedBy(reader, story.Key)
	require.NoError(t, err)
	assert.True(t, mine)

	_, clapped, err = env.stories.Clap(reader, story.Key)
	require.NoError(t, err)
	assert.False(t, clapped)

	n, err = env.stories.ClapsCount(story.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestStorySaveToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Story"), nil)
	require.NoError(t, err)

	_, saved, err := env.stories.Save(reader, story.Key)
	require.NoError(t, err)
	assert.True(t, saved)

	inList, err := env.stories.SavedBy(reader, story.Key)
	require.NoError(t, err)
	assert.True(t, inList)

	_, saved, err = env.stories.Save(reader, story.Key)
	require.NoError(t, err)
	assert.False(t, saved)

	inList, err = env.stories.SavedBy(reader, story.Key)
	require.NoError(t, err)
	assert.False(t, inList)
}

func TestStoryCommentThreading(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Story"), nil)
	require.NoError(t, err)
	otherStory, err := env.stories.Create(owner, author.Key, strPtr("Other"), nil)
	require.NoError(t, err)

	root, err := env.stories.CreateComment(reader, story.Key, "great read", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	reply, err := env.stories.CreateComment(owner, story.Key, "thanks!", &root.ID, &author.Key)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)
	require.NotNil(t, reply.AuthorKey)
	assert.Equal(t, author.Key, *reply.AuthorKey)

	// A parent from another story is rejected.
	_, err = env.stories.CreateComment(reader, otherStory.Key, "misplaced", &root.ID, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// Attributing to an unowned creator is rejected.
	_, err = env.stories.CreateComment(reader, story.Key, "spoofed", nil, &author.Key)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	// Root listing counts roots only.
	n, err := env.stories.CommentsCount(story.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	replies, err := env.stories.ReplyCount(root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, replies)
}

func TestStoryCommentEditAndDeleteOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Story"), nil)
	require.NoError(t, err)

	comment, err := env.stories.CreateComment(reader, story.Key, "first", nil, nil)
	require.NoError(t, err)

	_, err = env.stories.UpdateComment(owner, comment.ID, "hijack")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	edited, err := env.stories.UpdateComment(reader, comment.ID, "first, edited")
	require.NoError(t, err)
	assert.Equal(t, "first, edited", edited.Content)

	deleted, err := env.stories.DeleteComment(reader, comment.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	n, err := env.stories.CommentsCount(story.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestStoryCommentVoteToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	story, err := env.stories.Create(owner, author.Key, strPtr("Story"), nil)
	require.NoError(t, err)
	comment, err := env.stories.CreateComment(reader, story.Key, "first", nil, nil)
	require.NoError(t, err)

	_, voted, err := env.stories.VoteOnComment(owner, comment.ID)
	require.NoError(t, err)
	assert.True(t, voted)

	n, err := env.stories.CommentVotesCount(comment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, voted, err = env.stories.VoteOnComment(owner, comment.ID)
	require.NoError(t, err)
	assert.False(t, voted)

	n, err = env.stories.CommentVotesCount(comment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
