package gql

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/database"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/services"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type schemaEnv struct {
	db     *gorm.DB
	schema graphql.Schema
}

func newSchemaEnv(t *testing.T) *schemaEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	hub := broadcast.NewHub()
	images := services.NewImageService(db, nil)
	creators := services.NewCreatorService(db, images, hub)
	stories := services.NewStoryService(db, creators, images, hub)
	posts := services.NewPostService(db, creators, images, hub)

	schema, err := New(Deps{
		DB:       db,
		Creators: creators,
		Stories:  stories,
		Posts:    posts,
		Images:   images,
		Hub:      hub,
	})
	require.NoError(t, err)
	return &schemaEnv{db: db, schema: schema}
}

func (e *schemaEnv) viewer(t *testing.T, username string) viewer.Viewer {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, e.db.Create(&u).Error)
	return viewer.Viewer{User: &u}
}

func (e *schemaEnv) exec(v viewer.Viewer, query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        viewer.NewContext(context.Background(), v),
	})
}

func TestSchemaMeQuery(t *testing.T) {
	env := newSchemaEnv(t)
	v := env.viewer(t, "alice")

	result := env.exec(v, `{ me { username email } }`, nil)
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]interface{})
	me := data["me"].(map[string]interface{})
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, "alice@example.com", me["email"])

	// Anonymous me resolves to null, not an error.
	result = env.exec(viewer.Anonymous(), `{ me { username } }`, nil)
	require.Empty(t, result.Errors)
	assert.Nil(t, result.Data.(map[string]interface{})["me"])
}

func TestSchemaCreatorAndStoryFlow(t *testing.T) {
	env := newSchemaEnv(t)
	v := env.viewer(t, "alice")

	result := env.exec(v, `mutation {
		createCreator(name: "Alice Writes", handle: "alice-writes") { key handle }
	}`, nil)
	require.Empty(t, result.Errors)
	creator := result.Data.(map[string]interface{})["createCreator"].(map[string]interface{})
	creatorKey := creator["key"].(string)

	result = env.exec(v, `mutation($author: ID!) {
		createStory(authorKey: $author, title: "Hello") { key state title }
	}`, map[string]interface{}{"author": creatorKey})
	require.Empty(t, result.Errors)
	story := result.Data.(map[string]interface{})["createStory"].(map[string]interface{})
	assert.Equal(t, models.StateDraft, story["state"])
	storyKey := story["key"].(string)

	result = env.exec(v, `mutation($key: ID!) {
		updateStory(key: $key, content: "body", doPublish: true) { state publishedAt }
	}`, map[string]interface{}{"key": storyKey})
	require.Empty(t, result.Errors)
	updated := result.Data.(map[string]interface{})["updateStory"].(map[string]interface{})
	assert.Equal(t, models.StatePublished, updated["state"])
	assert.NotNil(t, updated["publishedAt"])

	reader := env.viewer(t, "bob")
	result = env.exec(reader, `mutation($key: ID!) {
		clapStory(storyKey: $key) { clapped story { clapsCount clappedByMe } }
	}`, map[string]interface{}{"key": storyKey})
	require.Empty(t, result.Errors)
	clap := result.Data.(map[string]interface{})["clapStory"].(map[string]interface{})
	assert.Equal(t, true, clap["clapped"])
	inner := clap["story"].(map[string]interface{})
	assert.Equal(t, 1, inner["clapsCount"])
	assert.Equal(t, true, inner["clappedByMe"])
}

func TestSchemaStoriesConnection(t *testing.T) {
	env := newSchemaEnv(t)
	v := env.viewer(t, "alice")

	result := env.exec(v, `mutation {
		createCreator(name: "Alice Writes", handle: "alice-writes") { key }
	}`, nil)
	require.Empty(t, result.Errors)
	creatorKey := result.Data.(map[string]interface{})["createCreator"].(map[string]interface{})["key"].(string)

	for _, title := range []string{"one", "two", "three"} {
		res := env.exec(v, `mutation($author: ID!, $title: String!) {
			createStory(authorKey: $author, title: $title) { key }
		}`, map[string]interface{}{"author": creatorKey, "title": title})
		require.Empty(t, res.Errors)
		key := res.Data.(map[string]interface{})["createStory"].(map[string]interface{})["key"].(string)
		res = env.exec(v, `mutation($key: ID!) { updateStory(key: $key, doPublish: true) { key } }`,
			map[string]interface{}{"key": key})
		require.Empty(t, res.Errors)
	}

	result = env.exec(viewer.Anonymous(), `{
		stories(first: 2) {
			totalCount
			edges { node { title } cursor }
			pageInfo { hasNextPage hasPreviousPage }
		}
	}`, nil)
	require.Empty(t, result.Errors)
	conn := result.Data.(map[string]interface{})["stories"].(map[string]interface{})
	assert.Equal(t, 3, conn["totalCount"])
	assert.Len(t, conn["edges"], 2)
	pageInfo := conn["pageInfo"].(map[string]interface{})
	assert.Equal(t, true, pageInfo["hasNextPage"])
	assert.Equal(t, false, pageInfo["hasPreviousPage"])
}

func TestSchemaStoriesFilterAndOrder(t *testing.T) {
	env := newSchemaEnv(t)
	v := env.viewer(t, "alice")

	result := env.exec(v, `mutation {
		createCreator(name: "Alice Writes", handle: "alice-writes") { key }
	}`, nil)
	require.Empty(t, result.Errors)
	creatorKey := result.Data.(map[string]interface{})["createCreator"].(map[string]interface{})["key"].(string)

	for _, title := range []string{"Gamma Go", "Alpha Go", "Beta Rust"} {
		res := env.exec(v, `mutation($author: ID!, $title: String!) {
			createStory(authorKey: $author, title: $title) { key }
		}`, map[string]interface{}{"author": creatorKey, "title": title})
		require.Empty(t, res.Errors)
		key := res.Data.(map[string]interface{})["createStory"].(map[string]interface{})["key"].(string)
		res = env.exec(v, `mutation($key: ID!) { updateStory(key: $key, doPublish: true) { key } }`,
			map[string]interface{}{"key": key})
		require.Empty(t, res.Errors)
	}

	// Case-insensitive substring filter.
	result = env.exec(viewer.Anonymous(), `{
		stories(titleContains: "go") { totalCount }
	}`, nil)
	require.Empty(t, result.Errors)
	conn := result.Data.(map[string]interface{})["stories"].(map[string]interface{})
	assert.Equal(t, 2, conn["totalCount"])

	// Explicit ordering overrides the recency default.
	result = env.exec(viewer.Anonymous(), `{
		stories(orderBy: "title", first: 1) { edges { node { title } } }
	}`, nil)
	require.Empty(t, result.Errors)
	edges := result.Data.(map[string]interface{})["stories"].(map[string]interface{})["edges"].([]interface{})
	require.Len(t, edges, 1)
	node := edges[0].(map[string]interface{})["node"].(map[string]interface{})
	assert.Equal(t, "Alpha Go", node["title"])

	// Unknown orderBy directives are rejected, not silently ignored.
	result = env.exec(viewer.Anonymous(), `{ stories(orderBy: "claps") { totalCount } }`, nil)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "validation", result.Errors[0].Extensions["kind"])
}

func TestSchemaAnonymousDerivedFieldsNeutral(t *testing.T) {
	env := newSchemaEnv(t)
	v := env.viewer(t, "alice")

	result := env.exec(v, `mutation {
		createCreator(name: "Alice Writes", handle: "alice-writes") { key }
	}`, nil)
	require.Empty(t, result.Errors)
	creatorKey := result.Data.(map[string]interface{})["createCreator"].(map[string]interface{})["key"].(string)

	result = env.exec(v, `mutation($author: ID!) {
		createStory(authorKey: $author, title: "Hello") { key }
	}`, map[string]interface{}{"author": creatorKey})
	require.Empty(t, result.Errors)
	storyKey := result.Data.(map[string]interface{})["createStory"].(map[string]interface{})["key"].(string)

	result = env.exec(v, `mutation {
		createPostPoll(question: "Tabs or spaces?", options: ["tabs", "spaces"]) { id }
	}`, nil)
	require.Empty(t, result.Errors)
	pollID := result.Data.(map[string]interface{})["createPostPoll"].(map[string]interface{})["id"].(string)

	result = env.exec(v, `mutation($author: ID!, $poll: ID!) {
		createPost(authorKey: $author, typeOf: "poll", pollId: $poll) { key }
	}`, map[string]interface{}{"author": creatorKey, "poll": pollID})
	require.Empty(t, result.Errors)
	postKey := result.Data.(map[string]interface{})["createPost"].(map[string]interface{})["key"].(string)

	// Anonymous viewers get neutral defaults, never errors.
	result = env.exec(viewer.Anonymous(), `query($s: ID!, $p: ID!) {
		story(key: $s) { clappedByMe savedByMe }
		post(key: $p) { clappedByMe savedByMe poll { myVote } }
	}`, map[string]interface{}{"s": storyKey, "p": postKey})
	require.Empty(t, result.Errors)
	data := result.Data.(map[string]interface{})
	story := data["story"].(map[string]interface{})
	assert.Equal(t, false, story["clappedByMe"])
	assert.Equal(t, false, story["savedByMe"])
	post := data["post"].(map[string]interface{})
	assert.Equal(t, false, post["clappedByMe"])
	assert.Equal(t, false, post["savedByMe"])
	poll := post["poll"].(map[string]interface{})
	assert.Nil(t, poll["myVote"])
}

func TestSchemaErrorsCarryKind(t *testing.T) {
	env := newSchemaEnv(t)

	result := env.exec(viewer.Anonymous(), `mutation {
		createCreator(name: "Anon", handle: "anon-handle") { key }
	}`, nil)
	require.NotEmpty(t, result.Errors)
	ext := result.Errors[0].Extensions
	require.NotNil(t, ext)
	assert.Equal(t, "authorization", ext["kind"])
}
