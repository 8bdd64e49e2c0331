package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/models"
)

func TestPostCreateTextDefaults(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")

	post, err := env.posts.Create(owner, PostInput{
		AuthorKey: author.Key,
		Text:      "hello world",
		Tags:      []string{"intro"},
	})
	require.NoError(t, err)
	assert.Len(t, post.Key, models.PostKeySize)
	assert.Equal(t, models.PostTypeText, post.TypeOf)
	assert.Equal(t, models.StatePublished, post.State)
	require.NotNil(t, post.PublishedAt)

	_, err = env.posts.Create(owner, PostInput{AuthorKey: author.Key, TypeOf: "hologram"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPostCreatePollKindNeedsPoll(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")

	_, err := env.posts.Create(owner, PostInput{AuthorKey: author.Key, TypeOf: models.PostTypePoll})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	missing := "missing-poll-id"
	_, err = env.posts.Create(owner, PostInput{AuthorKey: author.Key, TypeOf: models.PostTypePoll, PollID: &missing})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	poll, err := env.posts.CreatePoll(owner, "Tabs or spaces?", []string{"tabs", "spaces"})
	require.NoError(t, err)

	post, err := env.posts.Create(owner, PostInput{AuthorKey: author.Key, TypeOf: models.PostTypePoll, PollID: &poll.ID})
	require.NoError(t, err)
	require.NotNil(t, post.Poll)
	assert.Equal(t, poll.ID, post.Poll.ID)
}

func TestCreatePollValidation(t *testing.T) {
	env := newTestEnv(t)
	v := env.user(t, "alice")

	_, err := env.posts.CreatePoll(v, "", []string{"a", "b"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.posts.CreatePoll(v, "One-sided?", []string{"only"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	poll, err := env.posts.CreatePoll(v, "Tabs or spaces?", []string{" tabs ", "spaces", ""})
	require.NoError(t, err)
	opts := poll.OptionList()
	require.Len(t, opts, 2)
	assert.Equal(t, 1, opts[0].ID)
	assert.Equal(t, "tabs", opts[0].Text)
	assert.Equal(t, 2, opts[1].ID)
}

func TestPollVoteRetractAndReplace(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	voter := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")

	poll, err := env.posts.CreatePoll(owner, "Tabs or spaces?", []string{"tabs", "spaces"})
	require.NoError(t, err)
	post, err := env.posts.Create(owner, PostInput{AuthorKey: author.Key, TypeOf: models.PostTypePoll, PollID: &poll.ID})
	require.NoError(t, err)

	_, err = env.posts.VotePoll(voter, post.Key, 9)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.posts.VotePoll(voter, post.Key, 1)
	require.NoError(t, err)

	mine, err := env.posts.MyPollVote(voter, poll.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, 1, *mine)

	// A different option replaces the vote.
	_, err = env.posts.VotePoll(voter, post.Key, 2)
	require.NoError(t, err)

	mine, err = env.posts.MyPollVote(voter, poll.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, 2, *mine)

	total, err := env.posts.PollVotesCount(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	perOption, err := env.posts.PollOptionVotes(poll.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, perOption)

	// The same option again retracts.
	_, err = env.posts.VotePoll(voter, post.Key, 2)
	require.NoError(t, err)

	mine, err = env.posts.MyPollVote(voter, poll.ID)
	require.NoError(t, err)
	assert.Nil(t, mine)

	total, err = env.posts.PollVotesCount(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestPostClapToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	post, err := env.posts.Create(owner, PostInput{AuthorKey: author.Key, Text: "hi"})
	require.NoError(t, err)

	_, clapped, err := env.posts.Clap(reader, post.Key)
	require.NoError(t, err)
	assert.True(t, clapped)

	_, clapped, err = env.posts.Clap(reader, post.Key)
	require.NoError(t, err)
	assert.False(t, clapped)

	n, err := env.posts.ClapsCount(post.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestPostCommentRootsAndReplies(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	reader := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	post, err := env.posts.Create(owner, PostInput{AuthorKey: author.Key, Text: "hi"})
	require.NoError(t, err)

	root, err := env.posts.CreateComment(reader, post.Key, "root", nil, nil)
	require.NoError(t, err)
	_, err = env.posts.CreateComment(owner, post.Key, "reply", &root.ID, nil)
	require.NoError(t, err)

	n, err := env.posts.CommentsCount(post.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	replies, err := env.posts.ReplyCount(root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, replies)

	_, voted, err := env.posts.VoteOnComment(owner, root.ID)
	require.NoError(t, err)
	assert.True(t, voted)
	_, voted, err = env.posts.VoteOnComment(owner, root.ID)
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestPostUpdateAndSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "alice")
	other := env.user(t, "bob")
	author := env.creator(t, owner, "Alice Writes", "alice-writes")
	post, err := env.posts.Create(owner, PostInput{AuthorKey: author.Key, Text: "hi"})
	require.NoError(t, err)

	_, err = env.posts.Update(other, post.Key, PostPatch{Text: strPtr("hijack")})
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	updated, err := env.posts.Update(owner, post.Key, PostPatch{
		Text:    strPtr("hello again"),
		Privacy: strPtr(models.PrivacyUnlisted),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello again", updated.Text)
	assert.Equal(t, models.PrivacyUnlisted, updated.Privacy)

	deleted, err := env.posts.Delete(owner, post.Key)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	// Soft-deleted posts still resolve by key.
	got, err := env.posts.Get(post.Key)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}
