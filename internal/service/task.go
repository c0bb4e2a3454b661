package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
	"github.com/BuzzLyutic/task-tracker-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError несет конкретное поле, чтобы хэндлер мог отдать его клиенту.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// Create создает задачу. Владелец берется только из аутентификации,
// поле из тела запроса игнорируется.
func (s *TaskService) Create(ctx context.Context, ownerID string, t model.Task, idempKey string) (model.Task, error) {
	t.ID = 0
	t.OwnerID = ownerID
	if t.Priority == "" {
		t.Priority = model.PriorityLow
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}

	if err := validateTask(t); err != nil {
		return t, err
	}

	if idempKey != "" { // Если ключ уже привязан к задаче, не создаем вторую
		if existingID, err := s.repo.GetIdempotencyKey(ctx, ownerID, idempKey); err == nil {
			return s.repo.Get(ctx, ownerID, existingID)
		}
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	if idempKey != "" {
		s.repo.SaveIdempotencyKey(ctx, ownerID, idempKey, created.ID)
	}

	return created, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID string, id int64) (model.Task, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List возвращает задачи владельца по фильтру, новые — первыми.
func (s *TaskService) List(ctx context.Context, ownerID string, f model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, query.Build(ownerID, f))
}

func (s *TaskService) Update(ctx context.Context, ownerID string, id int64, patch model.TaskPatch) (model.Task, error) {
	if err := validatePatch(patch); err != nil {
		return model.Task{}, err
	}
	return s.repo.Update(ctx, ownerID, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Stats собирает сводку по владельцу. pending выводится из total и completed,
// чтобы сумма сходилась на любом срезе данных.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (model.TaskStats, error) {
	var st model.TaskStats

	total, err := s.repo.Count(ctx, query.Build(ownerID, model.TaskFilter{}))
	if err != nil {
		return st, err
	}

	completedStatus := model.StatusCompleted
	completed, err := s.repo.Count(ctx, query.Build(ownerID, model.TaskFilter{Status: &completedStatus}))
	if err != nil {
		return st, err
	}

	st.Total = total
	st.Completed = completed
	st.Pending = total - completed
	st.ByPriority = s.priorityHistogram(ctx, ownerID)
	return st, nil
}

// priorityHistogram — отказоустойчивый подшаг: кривой идентификатор владельца
// или ошибка сгруппированного подсчета дают нулевую гистограмму,
// а не ошибку всего запроса.
func (s *TaskService) priorityHistogram(ctx context.Context, ownerID string) model.PriorityCounts {
	var pc model.PriorityCounts

	uid, err := uuid.Parse(ownerID)
	if err != nil {
		s.logger.Warn("stats: malformed owner id, zeroing priority histogram",
			zap.String("owner_id", ownerID), zap.Error(err))
		return pc
	}

	counts, err := s.repo.CountByPriority(ctx, uid)
	if err != nil {
		s.logger.Warn("stats: priority histogram failed, zeroing", zap.Error(err))
		return pc
	}

	pc.Low = counts[model.PriorityLow]
	pc.Medium = counts[model.PriorityMedium]
	pc.High = counts[model.PriorityHigh]
	return pc
}

func validateTask(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if !model.ValidPriority(t.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be Low, Medium or High"}
	}
	if !model.ValidStatus(t.Status) {
		return &ValidationError{Field: "status", Reason: "must be Todo, In Progress or Completed"}
	}
	return nil
}

func validatePatch(p model.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Priority != nil && !model.ValidPriority(*p.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be Low, Medium or High"}
	}
	if p.Status != nil && !model.ValidStatus(*p.Status) {
		return &ValidationError{Field: "status", Reason: "must be Todo, In Progress or Completed"}
	}
	return nil
}
