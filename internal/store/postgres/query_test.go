package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"api", "%api%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\tmp`, `%c:\\tmp%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}

func TestTaskListQuery(t *testing.T) {
	status := models.TaskStatusTodo
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    store.TaskFilter
		page      store.Page
		wantWhere string
		wantTail  string
		wantArgs  int
	}{
		{
			name:      "projects only",
			filter:    store.TaskFilter{ProjectIDs: []string{"p1", "p2"}},
			page:      store.Page{Limit: 20},
			wantWhere: "WHERE (project_id = ANY($1) AND deleted_at IS NULL)",
			wantTail:  "ORDER BY created_at DESC, task_id LIMIT 20",
			wantArgs:  1,
		},
		{
			name:      "all filters",
			filter:    store.TaskFilter{ProjectIDs: []string{"p1"}, Status: &status, Search: "50%", DueFrom: &due},
			page:      store.Page{Skip: 40, Limit: 20},
			wantWhere: "WHERE (project_id = ANY($1) AND deleted_at IS NULL AND status = $2 AND title ILIKE $3 AND due_date >= $4)",
			wantTail:  "ORDER BY due_date ASC, task_id LIMIT 20 OFFSET 40",
			wantArgs:  4,
		},
		{
			name:      "unbounded",
			filter:    store.TaskFilter{},
			wantWhere: "WHERE (project_id = ANY($1) AND deleted_at IS NULL)",
			wantTail:  "ORDER BY created_at DESC, task_id",
			wantArgs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := taskListQuery(tt.filter, tt.page).ToSql()
			require.NoError(t, err)
			require.Contains(t, query, tt.wantWhere)
			require.True(t, strings.HasSuffix(query, tt.wantTail), query)
			require.Len(t, args, tt.wantArgs)
		})
	}
}

func TestTaskListQuery_SearchIsEscaped(t *testing.T) {
	_, args, err := taskListQuery(store.TaskFilter{Search: "a_b"}, store.Page{}).ToSql()
	require.NoError(t, err)
	require.Equal(t, []string{}, args[0])
	require.Equal(t, `%a\_b%`, args[1])
}

func TestLimitArg(t *testing.T) {
	require.Nil(t, limitArg(store.Page{}))
	require.Equal(t, 20, *limitArg(store.Page{Limit: 20}))
}
