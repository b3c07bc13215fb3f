package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TaskDayRepository reads the designated task-day calendar.
type TaskDayRepository struct {
	db *sqlx.DB
}

// NewTaskDayRepository constructs a TaskDayRepository.
func NewTaskDayRepository(db *sqlx.DB) *TaskDayRepository {
	return &TaskDayRepository{db: db}
}

// TaskDays returns every non-holiday task day between from and to inclusive, ascending.
// An empty bound is open.
func (r *TaskDayRepository) TaskDays(ctx context.Context, from, to string) ([]string, error) {
	const query = `SELECT day FROM task_days WHERE is_holiday = FALSE
        AND ($1 = '' OR day >= $1) AND ($2 = '' OR day <= $2) ORDER BY day ASC`
	var days []string
	if err := r.db.SelectContext(ctx, &days, query, from, to); err != nil {
		return nil, fmt.Errorf("list task days: %w", err)
	}
	return days, nil
}
