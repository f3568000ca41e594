package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/user/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// GetByEmail looks the account up ignoring case. A miss returns a zero User.
func (r *repositoryImpl) GetByEmail(ctx context.Context, email string) (user model.User, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.GetByEmail")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, err = r.Get(ctx, EmailFilter(email))
	if err != nil {
		return user, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *repositoryImpl) EmailExists(ctx context.Context, email string) (exists bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.EmailExists")
	defer scope.End()
	defer scope.TraceIfError(err)

	exists, err = r.Exist(ctx, EmailFilter(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return exists, nil
}

// EmailFilter matches email case-insensitively, mirroring the unique index on LOWER(email).
func EmailFilter(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				ArgName:  model.FieldEmail,
				Field:    fmt.Sprintf("LOWER(%s.%s)", model.TableName, model.FieldEmail),
				Value:    strings.ToLower(strings.TrimSpace(email)),
				Operator: gDto.FilterOperatorEq,
			},
		},
	}
}
