package dto

import (
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"hotel/internal/domains/room/model"
	"hotel/shared"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const priceScale = 2

var (
	errNegativePrice  = errors.New("price must not be negative")
	errPricePrecision = errors.New("price must have at most 2 decimal places")
	errPriceTooLarge  = errors.New("price must be less than 100000000")
)

var maxPrice = decimal.New(1, 8)

func validatePrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return errNegativePrice
	case !price.Equal(price.Truncate(priceScale)):
		return errPricePrecision
	case price.GreaterThanOrEqual(maxPrice):
		return errPriceTooLarge
	}

	return nil
}

type CreateRoomRequest struct {
	Name         string          `json:"name"         validate:"required,max=100"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Size         int             `json:"size"         validate:"gte=0"`
	MaxOccupancy int             `json:"maxOccupancy" validate:"gte=1,lte=20"`
	Amenities    []string        `json:"amenities"    validate:"omitempty,dive,required,max=100"`
	IsActive     *bool           `json:"isActive"`
}

// Validate checks the rules the struct tags cannot express.
func (c *CreateRoomRequest) Validate() error {
	return validatePrice(c.Price)
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}

	amenities := pq.StringArray{}
	if c.Amenities != nil {
		amenities = pq.StringArray(c.Amenities)
	}

	now := timezone.Now()

	return model.Room{
		Name:         c.Name,
		Description:  c.Description,
		Price:        c.Price,
		Size:         c.Size,
		MaxOccupancy: c.MaxOccupancy,
		Amenities:    amenities,
		IsActive:     active,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateRoomRequest backs both PUT and PATCH; absent fields are left untouched.
type UpdateRoomRequest struct {
	Name         *string          `db:"name"          json:"name"         validate:"omitempty,min=1,max=100"`
	Description  *string          `db:"description"   json:"description"`
	Price        *decimal.Decimal `db:"price"         json:"price"`
	Size         *int             `db:"size"          json:"size"         validate:"omitempty,gte=0"`
	MaxOccupancy *int             `db:"max_occupancy" json:"maxOccupancy" validate:"omitempty,gte=1,lte=20"`
	Amenities    *pq.StringArray  `db:"amenities"     json:"amenities"    validate:"omitempty,dive,required,max=100"`
	IsActive     *bool            `db:"is_active"     json:"isActive"`
}

func (u *UpdateRoomRequest) Validate() error {
	if u.Price == nil {
		return nil
	}

	return validatePrice(*u.Price)
}

type RoomResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        string   `json:"price"`
	Size         int      `json:"size"`
	MaxOccupancy int      `json:"maxOccupancy"`
	Amenities    []string `json:"amenities"`
	IsActive     bool     `json:"isActive"`
	Image        *string  `json:"image"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func (r *RoomResponse) FromModel(model model.Room) {
	var metadata gDto.Metadata
	metadata.FromModel(model.Metadata)

	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.Price = model.Price.StringFixed(priceScale)
	r.Size = model.Size
	r.MaxOccupancy = model.MaxOccupancy
	r.Amenities = append([]string{}, model.Amenities...)
	r.IsActive = model.IsActive
	r.Image = nil
	r.CreatedAt = metadata.CreatedAt
	r.UpdatedAt = metadata.ModifiedAt

	if model.Image != "" {
		image := model.Image
		r.Image = &image
	}
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

// UploadImageRequest carries an image from either a multipart form or a base64 data URI.
type UploadImageRequest struct {
	FileName    string    `json:"fileName"`
	ContentType string    `json:"image"    validate:"required,mimetypes=image/png image/jpeg image/webp"`
	Size        int64     `json:"size"     validate:"gt=0,maxfilesize=2"`
	Body        io.Reader `json:"-"`
}

// Extension returns the file extension to store the image under, derived from the content type.
func (u *UploadImageRequest) Extension() string {
	if ext := path.Ext(u.FileName); ext != "" {
		return strings.ToLower(ext)
	}

	_, subtype, found := strings.Cut(u.ContentType, "/")
	if !found {
		return ""
	}

	return "." + subtype
}

const queryParamActive = "active"

// RoomFilter holds the listing filters: a name substring and the active flag.
type RoomFilter struct {
	Name   string
	Active *bool
}

func (f *RoomFilter) FromQuery(query url.Values) {
	f.Name = strings.TrimSpace(query.Get(model.FieldName))
	f.Active = shared.ConvertStringToBool(query.Get(queryParamActive))
}

func (f *RoomFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}

	if f.Name != "" {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldName, Value: f.Name, Operator: gDto.FilterOperatorLike, Table: model.TableName,
		})
	}

	if f.Active != nil {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldIsActive, Value: *f.Active, Operator: gDto.FilterOperatorEq, Table: model.TableName,
		})
	}

	return group
}
