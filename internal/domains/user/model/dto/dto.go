package dto

import (
	"net/url"
	"strings"
	"time"

	"hotel/internal/domains/user/model"
	"hotel/permissions"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string `json:"email"     validate:"required,email,max=254"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=150"`
	Role     string `json:"role"      validate:"omitempty,oneof=ADMIN RECEPTIONIST CUSTOMER"`
}

func (r *CreateUserRequest) ToModel(createdBy, hashedPassword string) model.User {
	role := r.Role
	if role == "" {
		role = constant.RoleCustomer
	}

	now := timezone.Now()

	return model.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		FullName: r.FullName,
		Role:     role,
		Active:   true,
		IsStaff:  role != constant.RoleCustomer,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  createdBy,
			ModifiedBy: createdBy,
		},
	}
}

// UserResponse is the public view of an account. Roles and permissions are derived from
// the role so clients can gate UI without a second lookup.
type UserResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Role        string   `json:"role"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Active      bool     `json:"active"`
	IsStaff     bool     `json:"is_staff"`
	LastLogin   *string  `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.FullName = model.FullName
	r.Role = model.Role
	r.Roles = []string{model.Role}
	r.Permissions = permissions.Capabilities(model.Role)
	r.Active = model.Active
	r.IsStaff = model.IsStaff
	r.LastLogin = nil

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, time.RFC3339)
		r.LastLogin = &lastLogin
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

// UserFilter narrows the admin user listing. Email matches as a case-insensitive substring.
type UserFilter struct {
	Email  string
	Role   string
	Active *bool
}

func (f *UserFilter) FromQuery(query url.Values) {
	f.Email = strings.TrimSpace(query.Get(model.FieldEmail))
	f.Role = strings.ToUpper(strings.TrimSpace(query.Get(model.FieldRole)))
	f.Active = shared.ConvertStringToBool(query.Get(model.FieldActive))
}

func (f *UserFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}

	if f.Email != "" {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldEmail, Value: f.Email, Operator: gDto.FilterOperatorLike, Table: model.TableName,
		})
	}

	if f.Role != "" {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldRole, Value: f.Role, Operator: gDto.FilterOperatorEq, Table: model.TableName,
		})
	}

	if f.Active != nil {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldActive, Value: *f.Active, Operator: gDto.FilterOperatorEq, Table: model.TableName,
		})
	}

	return group
}
