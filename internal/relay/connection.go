package relay

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/techgyan/techgyan-backend/internal/apperr"
	"gorm.io/gorm"
)

const cursorPrefix = "cursor:"

// Args are the relay pagination arguments of a connection field.
type Args struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor"`
}

// Connection is a relay-style page over an ordered query. Cursors are
// opaque offsets into that ordering, so they stay valid only as long as
// the ordering does; that is the usual trade of offset connections.
type Connection[T any] struct {
	Edges      []Edge[T] `json:"edges"`
	PageInfo   PageInfo  `json:"pageInfo"`
	TotalCount int       `json:"totalCount"`
}

func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func DecodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, apperr.Validation("malformed cursor %q", cursor)
	}
	s := string(raw)
	if !strings.HasPrefix(s, cursorPrefix) {
		return 0, apperr.Validation("malformed cursor %q", cursor)
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(s, cursorPrefix))
	if err != nil || offset < 0 {
		return 0, apperr.Validation("malformed cursor %q", cursor)
	}
	return offset, nil
}

// Paginate runs the relay window algorithm over query. The order clause
// must produce a stable total ordering; callers append the primary key
// as a tie-break.
func Paginate[T any](query *gorm.DB, order string, args Args) (*Connection[T], error) {
	if args.First != nil && *args.First < 0 {
		return nil, apperr.Validation("first must not be negative")
	}
	if args.Last != nil && *args.Last < 0 {
		return nil, apperr.Validation("last must not be negative")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count for pagination: %w", err)
	}

	start, end := 0, int(total)
	if args.After != nil {
		offset, err := DecodeCursor(*args.After)
		if err != nil {
			return nil, err
		}
		if offset+1 > start {
			start = offset + 1
		}
	}
	if args.Before != nil {
		offset, err := DecodeCursor(*args.Before)
		if err != nil {
			return nil, err
		}
		if offset < end {
			end = offset
		}
	}
	if start > end {
		start = end
	}
	if args.First != nil && end-start > *args.First {
		end = start + *args.First
	}
	if args.Last != nil && end-start > *args.Last {
		start = end - *args.Last
	}

	conn := &Connection[T]{
		TotalCount: int(total),
		Edges:      []Edge[T]{},
		PageInfo: PageInfo{
			HasNextPage:     end < int(total),
			HasPreviousPage: start > 0,
		},
	}
	if start >= end {
		return conn, nil
	}

	var nodes []T
	err := query.Session(&gorm.Session{}).
		Order(order).Offset(start).Limit(end - start).
		Find(&nodes).Error
	if err != nil {
		return nil, fmt.Errorf("page fetch: %w", err)
	}

	conn.Edges = make([]Edge[T], len(nodes))
	for i, node := range nodes {
		conn.Edges[i] = Edge[T]{Node: node, Cursor: EncodeCursor(start + i)}
	}
	if len(conn.Edges) > 0 {
		first := conn.Edges[0].Cursor
		last := conn.Edges[len(conn.Edges)-1].Cursor
		conn.PageInfo.StartCursor = &first
		conn.PageInfo.EndCursor = &last
	}
	return conn, nil
}
