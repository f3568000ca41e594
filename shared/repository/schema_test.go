package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel/shared/dto"
)

type audit struct {
	CreatedAt string `db:"created_at"`
	CreatedBy string `db:"created_by"`
}

type stay struct {
	ID       int64  `db:"id"        insert:"-"`
	RoomID   int64  `db:"room_id"`
	Status   string `db:"status"`
	Ignored  string
	RoomName string `db:"room_name" table:"rooms" column:"name"`
	audit
}

func (stay) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = stays.room_id"
}

type plain struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func TestSchemaOf(t *testing.T) {
	s := schemaOf[stay]("stays")

	assert.Equal(t, []string{"room_id", "status", "created_at", "created_by"}, s.insert)
	assert.Equal(t, " JOIN rooms ON rooms.id = stays.room_id", s.join)
	assert.Equal(t,
		"SELECT stays.id, stays.room_id, stays.status, rooms.name AS room_name, stays.created_at, stays.created_by "+
			"FROM stays JOIN rooms ON rooms.id = stays.room_id",
		s.selectQuery(nil))
	assert.Equal(t,
		"SELECT stays.id, rooms.name AS room_name FROM stays JOIN rooms ON rooms.id = stays.room_id",
		s.selectQuery([]string{"id", "room_name"}))
}

func TestSchema_InsertQuery(t *testing.T) {
	s := schemaOf[plain]("tags")

	assert.Empty(t, s.join)
	assert.Equal(t, "INSERT INTO tags (id, name) VALUES (:id, :name)", s.insertQuery(""))
	assert.Equal(t, "INSERT INTO tags (id, name) VALUES (:id, :name) RETURNING id", s.insertQuery("id"))
}

func TestUpdateQuery(t *testing.T) {
	query := updateQuery("rooms", map[string]any{"price": 10, "active": false, "modified_by": "u"})

	assert.Equal(t, "UPDATE rooms SET active = :active, modified_by = :modified_by, price = :price", query)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		params   dto.QueryParams
		want     string
		wantArgs map[string]any
	}{
		{
			name:     "no limit",
			params:   dto.QueryParams{Page: 2},
			want:     "",
			wantArgs: map[string]any{},
		},
		{
			name:     "limit only",
			params:   dto.QueryParams{Limit: 5},
			want:     " LIMIT :limit",
			wantArgs: map[string]any{"limit": 5},
		},
		{
			name:     "page and limit",
			params:   dto.QueryParams{Page: 3, Limit: 10},
			want:     " LIMIT :limit OFFSET :offset",
			wantArgs: map[string]any{"limit": 10, "offset": 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}

			assert.Equal(t, tt.want, paginate(tt.params, args))
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOrderByAndWhere(t *testing.T) {
	assert.Empty(t, orderBy(dto.QueryParams{SortBy: "price"}))
	assert.Equal(t, " ORDER BY price ASC", orderBy(dto.QueryParams{SortBy: "price", SortDir: "ASC"}))

	where, args := whereClause(dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = whereClause(dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{Field: "id", Value: "b1", Operator: dto.FilterOperatorEq, Table: "bookings"}},
	})
	assert.Equal(t, " WHERE (bookings.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "b1"}, args)
}
