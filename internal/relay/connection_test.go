package relay

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type entry struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func seedEntries(t *testing.T, n int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entry{}))
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&entry{ID: i, Name: fmt.Sprintf("entry-%d", i)}).Error)
	}
	return db
}

func intPtr(i int) *int { return &i }

func names(conn *Connection[entry]) []string {
	out := make([]string, len(conn.Edges))
	for i, e := range conn.Edges {
		out[i] = e.Node.Name
	}
	return out
}

func TestPaginateWholeSet(t *testing.T) {
	db := seedEntries(t, 3)
	conn, err := Paginate[entry](db.Model(&entry{}), "id", Args{})
	require.NoError(t, err)
	assert.Equal(t, 3, conn.TotalCount)
	assert.Equal(t, []string{"entry-1", "entry-2", "entry-3"}, names(conn))
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.False(t, conn.PageInfo.HasPreviousPage)
	require.NotNil(t, conn.PageInfo.StartCursor)
	assert.Equal(t, conn.Edges[0].Cursor, *conn.PageInfo.StartCursor)
}

func TestPaginateForward(t *testing.T) {
	db := seedEntries(t, 7)

	first, err := Paginate[entry](db.Model(&entry{}), "id", Args{First: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-1", "entry-2", "entry-3"}, names(first))
	assert.True(t, first.PageInfo.HasNextPage)
	assert.False(t, first.PageInfo.HasPreviousPage)

	second, err := Paginate[entry](db.Model(&entry{}), "id", Args{
		First: intPtr(3),
		After: first.PageInfo.EndCursor,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-4", "entry-5", "entry-6"}, names(second))
	assert.True(t, second.PageInfo.HasNextPage)
	assert.True(t, second.PageInfo.HasPreviousPage)

	third, err := Paginate[entry](db.Model(&entry{}), "id", Args{
		First: intPtr(3),
		After: second.PageInfo.EndCursor,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-7"}, names(third))
	assert.False(t, third.PageInfo.HasNextPage)
}

func TestPaginateBackward(t *testing.T) {
	db := seedEntries(t, 5)

	last, err := Paginate[entry](db.Model(&entry{}), "id", Args{Last: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-4", "entry-5"}, names(last))
	assert.False(t, last.PageInfo.HasNextPage)
	assert.True(t, last.PageInfo.HasPreviousPage)

	prev, err := Paginate[entry](db.Model(&entry{}), "id", Args{
		Last:   intPtr(2),
		Before: last.PageInfo.StartCursor,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"entry-2", "entry-3"}, names(prev))
	assert.True(t, prev.PageInfo.HasNextPage)
	assert.True(t, prev.PageInfo.HasPreviousPage)
}

func TestPaginateEmptyWindow(t *testing.T) {
	db := seedEntries(t, 2)
	conn, err := Paginate[entry](db.Model(&entry{}), "id", Args{First: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
	assert.Equal(t, 2, conn.TotalCount)
	assert.True(t, conn.PageInfo.HasNextPage)
	assert.Nil(t, conn.PageInfo.StartCursor)
}

func TestPaginateRejectsBadArgs(t *testing.T) {
	db := seedEntries(t, 2)

	_, err := Paginate[entry](db.Model(&entry{}), "id", Args{First: intPtr(-1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	bad := "not-base64!"
	_, err = Paginate[entry](db.Model(&entry{}), "id", Args{After: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCursorRoundTrip(t *testing.T) {
	c := EncodeCursor(42)
	offset, err := DecodeCursor(c)
	require.NoError(t, err)
	assert.Equal(t, 42, offset)

	_, err = DecodeCursor(EncodeCursor(0))
	require.NoError(t, err)
}
