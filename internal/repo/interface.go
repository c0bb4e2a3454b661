package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

// TaskRepository определяет интерфейс для работы с задачами.
// Все операции чтения/записи привязаны к владельцу.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, ownerID string, id int64) (model.Task, error)
	List(ctx context.Context, p query.Predicate) ([]model.Task, error)
	Update(ctx context.Context, ownerID string, id int64, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	Count(ctx context.Context, p query.Predicate) (int, error)
	CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[string]int, error)
	SaveIdempotencyKey(ctx context.Context, ownerID, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, ownerID, key string) (int64, error)
}

// UserRepository определяет интерфейс для работы с пользователями.
type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id string) (model.User, error)
}
