package model

import "time"

// Значения приоритетов и статусов задачи. "In Progress" — с пробелом,
// это же значение уходит на клиента.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"

	StatusTodo       = "Todo"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

type Task struct {
	ID          int64      `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskFilter — необязательные условия выборки. nil означает "без фильтра",
// пустая строка фильтром не считается.
type TaskFilter struct {
	Status   *string
	Priority *string
	Search   *string
}

// TaskPatch — частичное обновление: применяются только не-nil поля,
// остальное у задачи не трогаем.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskStats struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Pending    int            `json:"pending"`
	ByPriority PriorityCounts `json:"byPriority"`
}

// PriorityCounts — гистограмма по приоритетам; структура, а не map,
// чтобы в ответе всегда были все три ключа.
type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
