package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/shared/constant"
	"hotel/shared/dto"
	"hotel/shared/logger"

	"github.com/jmoiron/sqlx"
)

var errRequiredFilter = errors.New("required filter")

// runner is satisfied by both *sqlx.DB and *sqlx.Tx.
type runner interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository is the generic table gateway embedded by every domain repository. T is a struct
// whose db tags name its columns; see schemaOf for the supported tags.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	entity        string
	primaryColumn string
	schema        schema
}

func NewRepository[T any](entity, table, primaryColumn string, db *postgres.Connection, otl otel.Otel) Repository[T] {
	return Repository[T]{
		db:            db,
		otel:          otl,
		entity:        entity,
		primaryColumn: primaryColumn,
		schema:        schemaOf[T](table),
	}
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName,
		constant.OtelRepositoryScopeName+"."+repo.entity+"."+op)
}

// fail records err on the span and wraps it with the operation and entity name.
func (repo *Repository[T]) fail(scope otel.Scope, op string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", op, repo.entity, err)
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	return repo.insert(ctx, repo.db.Write, model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, tx *sqlx.Tx, model T) error {
	return repo.insert(ctx, tx, model)
}

func (repo *Repository[T]) insert(ctx context.Context, db runner, model T) error {
	ctx, scope := repo.scope(ctx, "Insert")
	defer scope.End()

	query := repo.schema.insertQuery("")
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := db.NamedExecContext(ctx, query, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

// InsertReturning inserts model and scans the generated primary key into dest. Columns tagged
// insert:"-" are left to their database defaults.
func (repo *Repository[T]) InsertReturning(ctx context.Context, model T, dest any) error {
	ctx, scope := repo.scope(ctx, "InsertReturning")
	defer scope.End()

	query := repo.schema.insertQuery(repo.primaryColumn)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err := repo.get(ctx, repo.db.Write, query, dest, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	return repo.exist(ctx, repo.db.Read, filter)
}

// ExistTx runs the existence check inside tx so it observes rows locked or written there.
func (repo *Repository[T]) ExistTx(ctx context.Context, tx *sqlx.Tx, filter dto.FilterGroup) (bool, error) {
	return repo.exist(ctx, tx, filter)
}

func (repo *Repository[T]) exist(ctx context.Context, db runner, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", repo.schema.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var exists bool
	if err := repo.get(ctx, db, query, &exists, args); err != nil {
		return false, repo.fail(scope, "check exist data", err)
	}

	return exists, nil
}

// Get returns the first row matching filter, or the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	where, args := whereClause(filter)
	query := repo.schema.selectQuery(columns) + where
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var model T

	err := repo.get(ctx, repo.db.Read, query, &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := whereClause(filter)
	query := repo.schema.selectQuery(columns) + where + orderBy(params) + paginate(params, args)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var models []T

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, &models, args); err != nil {
		return nil, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s%s%s",
		repo.schema.table, repo.primaryColumn, repo.schema.table, repo.schema.join, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int
	if err := repo.get(ctx, repo.db.Read, query, &count, args); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Delete")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	query := "DELETE FROM " + repo.schema.table + where
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.db.Write.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

func (repo *Repository[T]) Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) error {
	_, err := repo.UpdateAffected(ctx, fields, filter)

	return err
}

// UpdateAffected behaves like Update and reports how many rows matched the filter, so callers
// can guard a write on the state they observed.
func (repo *Repository[T]) UpdateAffected(ctx context.Context, fields map[string]any, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.scope(ctx, "Update")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return 0, errRequiredFilter
	}

	query := updateQuery(repo.schema.table, fields) + where
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)
	maps.Copy(args, fields)

	result, err := repo.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		return 0, repo.fail(scope, "update data", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, repo.fail(scope, "read affected rows", err)
	}

	return affected, nil
}

func (repo *Repository[T]) get(ctx context.Context, db runner, query string, dest, arg any) error {
	stmt, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	return stmt.GetContext(ctx, dest, arg) //nolint:wrapcheck
}

func whereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return " WHERE " + where, args
}

// orderBy expects params to have been sanitised against the entity's sortable columns.
func orderBy(params dto.QueryParams) string {
	if params.SortBy == "" || params.SortDir == "" {
		return ""
	}

	return fmt.Sprintf(" ORDER BY %s %s", params.SortBy, params.SortDir)
}

func paginate(params dto.QueryParams, args map[string]any) string {
	if params.Limit <= 0 {
		return ""
	}

	args["limit"] = params.Limit

	if params.Page <= 0 {
		return " LIMIT :limit"
	}

	args["offset"] = (params.Page - 1) * params.Limit

	return " LIMIT :limit OFFSET :offset"
}

// updateQuery renders the SET list in column order so the statement text is stable.
func updateQuery(table string, fields map[string]any) string {
	columns := slices.Sorted(maps.Keys(fields))
	assignments := make([]string, len(columns))

	for i, col := range columns {
		assignments[i] = col + " = :" + col
	}

	return fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", "))
}
