package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/query"
)

func strPtr(s string) *string { return &s }

func TestLowerPredicate(t *testing.T) {
	tests := []struct {
		name      string
		predicate query.Predicate
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "owner only",
			predicate: query.Build("o1", model.TaskFilter{}),
			wantWhere: "owner_id = $1",
			wantArgs:  []any{"o1"},
		},
		{
			name:      "owner and status",
			predicate: query.Build("o1", model.TaskFilter{Status: strPtr("Todo")}),
			wantWhere: "owner_id = $1 AND status = $2",
			wantArgs:  []any{"o1", "Todo"},
		},
		{
			name: "all terms",
			predicate: query.Build("o1", model.TaskFilter{
				Status:   strPtr("Todo"),
				Priority: strPtr("High"),
				Search:   strPtr("buy"),
			}),
			wantWhere: "owner_id = $1 AND status = $2 AND priority = $3 AND (title ~* $4 OR description ~* $4)",
			wantArgs:  []any{"o1", "Todo", "High", "^buy"},
		},
		{
			name:      "search pattern is anchored and escaped",
			predicate: query.Build("o1", model.TaskFilter{Search: strPtr("a.b*")}),
			wantWhere: "owner_id = $1 AND (title ~* $2 OR description ~* $2)",
			wantArgs:  []any{"o1", `^a\.b\*`},
		},
		{
			name:      "every regex metacharacter survives as a literal",
			predicate: query.Build("o1", model.TaskFilter{Search: strPtr(`.+?^${}()|[]\`)}),
			wantWhere: "owner_id = $1 AND (title ~* $2 OR description ~* $2)",
			wantArgs:  []any{"o1", `^\.\+\?\^\$\{\}\(\)\|\[\]\\`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := lowerPredicate(tt.predicate)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
