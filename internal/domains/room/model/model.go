package model

import (
	"hotel/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID           = "id"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldPrice        = "price"
	FieldSize         = "size"
	FieldMaxOccupancy = "max_occupancy"
	FieldAmenities    = "amenities"
	FieldImage        = "image"
	FieldIsActive     = "is_active"
)

// Room is a bookable unit. ID is assigned by the database.
type Room struct {
	ID           int64           `db:"id"            insert:"-"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	Size         int             `db:"size"`
	MaxOccupancy int             `db:"max_occupancy"`
	Amenities    pq.StringArray  `db:"amenities"`
	Image        string          `db:"image"`
	IsActive     bool            `db:"is_active"`
	model.Metadata
}

// Fits reports whether a party of the given size can stay in the room.
func (r Room) Fits(adults, children int) bool {
	return adults+children <= r.MaxOccupancy
}
