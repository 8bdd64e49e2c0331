package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/database"
	"github.com/techgyan/techgyan-backend/internal/gql"
	"github.com/techgyan/techgyan-backend/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *fiber.App {
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
	schema, err := gql.New(gql.Deps{
		DB:       db,
		Creators: creators,
		Stories:  services.NewStoryService(db, creators, images, hub),
		Posts:    services.NewPostService(db, creators, images, hub),
		Images:   images,
		Hub:      hub,
	})
	require.NoError(t, err)

	h := NewGraphQLHandler(schema)
	app := fiber.New()
	app.Post("/graphql", h.Post)
	app.Get("/graphql", h.Get)
	return app
}

func TestGraphQLPostSingle(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ me { username } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.Nil(t, data["me"])
}

func TestGraphQLPostSingleBadQuery(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ nope }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Nil(t, body["data"])
	assert.NotEmpty(t, body["errors"])
}

func TestGraphQLPostBatchEnvelope(t *testing.T) {
	app := newTestApp(t)

	payload := `[
		{"id": 1, "query": "{ me { username } }"},
		{"id": 2, "query": "{ nope }"}
	]`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	// Batch responses keep the transport status at 200; item status
	// lives in the envelope.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 2)

	assert.EqualValues(t, 1, items[0]["id"])
	assert.EqualValues(t, fiber.StatusOK, items[0]["status"])
	assert.EqualValues(t, 2, items[1]["id"])
	assert.EqualValues(t, fiber.StatusBadRequest, items[1]["status"])
	assert.NotEmpty(t, items[1]["errors"])
}

func TestGraphQLGetRejectsMutations(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/graphql?query="+
		"mutation%20%7B%20createCreator(name%3A%20%22x%22%2C%20handle%3A%20%22xyzzy%22)%20%7B%20key%20%7D%20%7D", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("GET", "/graphql?query=%7B%20me%20%7B%20username%20%7D%20%7D", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
