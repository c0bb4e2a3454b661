package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

// Count считает задачи по тому же предикату, что и List.
func (r *TaskRepo) Count(ctx context.Context, p query.Predicate) (int, error) {
	where, args := lowerPredicate(p)

	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM tasks WHERE "+where, args...).Scan(&n)
	return n, err
}

// CountByPriority — сгруппированный подсчет по одному полю. Принимает
// уже распарсенный uuid: проверка идентификатора владельца — забота
// вызывающего, здесь ключ заведомо корректный.
func (r *TaskRepo) CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT priority, count(*)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY priority
	`, ownerID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var priority string
		var n int
		if err := rows.Scan(&priority, &n); err != nil {
			return nil, err
		}
		counts[priority] = n
	}
	return counts, rows.Err()
}
