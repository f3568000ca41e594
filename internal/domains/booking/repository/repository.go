package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"

	"github.com/jmoiron/sqlx"
)

// ErrUnavailable is returned when another occupying booking already holds the room for an
// overlapping date range.
var ErrUnavailable = errors.New("room is not available for the selected dates")

type Booking interface {
	CreateIfAvailable(ctx context.Context, booking model.Booking) error
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut model.Date) (bool, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateGuarded(ctx context.Context, fields map[string]any, id string, observed model.Status) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// CreateIfAvailable inserts booking unless it overlaps an occupying booking on the same room.
// The check and the insert share a transaction serialised per room by an advisory lock; the
// exclusion constraint on bookings catches anything that bypasses this path.
func (r *repositoryImpl) CreateIfAvailable(ctx context.Context, booking model.Booking) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CreateIfAvailable")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = r.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", booking.RoomID); err != nil {
			return fmt.Errorf("failed to lock room %d: %w", booking.RoomID, err)
		}

		overlap, err := r.ExistTx(ctx, tx, OverlapFilter(booking.RoomID, booking.CheckIn, booking.CheckOut))
		if err != nil {
			return err //nolint:wrapcheck
		}

		if overlap {
			return ErrUnavailable
		}

		return r.InsertTx(ctx, tx, booking) //nolint:wrapcheck
	})

	if gRepo.IsPqError(err, constant.PqErrorCodeExclusionViolation) {
		return ErrUnavailable
	}

	return err //nolint:wrapcheck
}

func (r *repositoryImpl) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut model.Date) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.HasOverlap")
	defer scope.End()

	return r.Exist(ctx, OverlapFilter(roomID, checkIn, checkOut)) //nolint:wrapcheck
}

// OverlapFilter matches occupying bookings on roomID whose stay intersects [checkIn, checkOut).
func OverlapFilter(roomID int64, checkIn, checkOut model.Date) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Value: roomID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.OccupyingStatuses(), Operator: gDto.FilterOperatorIn, Table: model.TableName},
			gDto.Filter{ArgName: "stay_check_out", Field: model.FieldCheckIn, Value: checkOut, Operator: gDto.FilterOperatorLess, Table: model.TableName},
			gDto.Filter{ArgName: "stay_check_in", Field: model.FieldCheckOut, Value: checkIn, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		},
	}
}

// UpdateGuarded applies fields to booking id only while its status is still observed. It
// reports false when another writer changed the status first.
func (r *repositoryImpl) UpdateGuarded(ctx context.Context, fields map[string]any, id string, observed model.Status) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateGuarded")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{ArgName: "guard_id", Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "guard_status", Field: model.FieldStatus, Value: observed, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	affected, err := r.UpdateAffected(ctx, fields, filter)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	return affected > 0, nil
}
