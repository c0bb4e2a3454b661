package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = "id, owner_id, title, description, priority, status, due_date, created_at, updated_at"

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

// lowerPredicate опускает предикат в SQL. Имена полей приходят из
// констант пакета query, значения — только через аргументы запроса.
// Для префиксного поиска текст экранируется QuoteMeta и якорится в начале,
// матчер ~* регистронезависимый.
func lowerPredicate(p query.Predicate) (string, []any) {
	terms := make([]string, 0, len(p.Clauses))
	args := make([]any, 0, len(p.Clauses))

	for _, c := range p.Clauses {
		switch c := c.(type) {
		case query.Equals:
			args = append(args, c.Value)
			terms = append(terms, fmt.Sprintf("%s = $%d", c.Field, len(args)))
		case query.PrefixAny:
			args = append(args, "^"+regexp.QuoteMeta(c.Text))
			n := len(args)
			ors := make([]string, 0, len(c.Fields))
			for _, f := range c.Fields {
				ors = append(ors, fmt.Sprintf("%s ~* $%d", f, n))
			}
			terms = append(terms, "("+strings.Join(ors, " OR ")+")")
		}
	}

	return strings.Join(terms, " AND "), args
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, title, description, priority, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns+`
	`, t.OwnerID, t.Title, t.Description, t.Priority, t.Status, t.DueDate).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, mapError(err)
}

// Get ищет строго по паре (id, owner_id): чужая задача неотличима
// от несуществующей.
func (r *TaskRepo) Get(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, p query.Predicate) ([]model.Task, error) {
	where, args := lowerPredicate(p)
	sql := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update применяет только не-nil поля через COALESCE, updated_at
// обновляется всегда.
func (r *TaskRepo) Update(ctx context.Context, ownerID string, id int64, patch model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    priority    = COALESCE($5, priority),
		    status      = COALESCE($6, status),
		    due_date    = COALESCE($7, due_date),
		    updated_at  = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns+`
	`, id, ownerID, patch.Title, patch.Description, patch.Priority, patch.Status, patch.DueDate).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, ownerID string, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// Ключи идемпотентности привязаны к владельцу: чужой ключ никогда
// не вернет чужую задачу.
func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, ownerID, key string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, owner_id, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (key, owner_id) DO NOTHING
	`, key, ownerID, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, ownerID, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1 AND owner_id = $2
	`, key, ownerID).Scan(&id)

	if err == pgx.ErrNoRows {
		return 0, ErrorNotFound
	}
	return id, err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
