package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/billing"
	"github.com/wolfeidau/teamhub/internal/members"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/notify"
	"github.com/wolfeidau/teamhub/internal/projects"
	"github.com/wolfeidau/teamhub/internal/store"
	"github.com/wolfeidau/teamhub/internal/store/memory"
)

const orgID = "org-1"

type fixture struct {
	svc      *Service
	projects *projects.Service
	events   *notify.Recorder
	project  *models.Project
	foreign  *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	stores := memory.NewStores()
	for _, org := range []*models.Organization{
		{OrgID: orgID, Slug: "acme", BillingPlanID: "free"},
		{OrgID: "org-2", Slug: "other", BillingPlanID: "free"},
	} {
		require.NoError(t, stores.Organizations.Create(ctx, org))
	}
	require.NoError(t, stores.Members.Create(ctx, &models.Member{MemberID: "user-1", OrgID: orgID, Email: "u1@acme.io", Role: models.RoleOwner}))
	require.NoError(t, stores.Members.Create(ctx, &models.Member{MemberID: "user-2", OrgID: orgID, Email: "u2@acme.io", Role: models.RoleMember}))

	policy := billing.NewPolicy(stores)
	projectSvc := projects.NewService(stores.Projects, policy, members.NewService(stores.Members, policy, notify.Discard{}))

	project, err := projectSvc.Create(ctx, orgID, "user-1", projects.CreateRequest{Name: "Apollo"})
	require.NoError(t, err)
	foreign, err := projectSvc.Create(ctx, "org-2", "user-9", projects.CreateRequest{Name: "Gemini"})
	require.NoError(t, err)

	events := &notify.Recorder{}
	return &fixture{
		svc:      NewService(stores.Tasks, projectSvc, events),
		projects: projectSvc,
		events:   events,
		project:  project,
		foreign:  foreign,
	}
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := apperr.KindOf(err)
	require.True(t, ok, "unclassified error: %v", err)
	require.Equal(t, kind, got, err.Error())
}

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &d
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		f := newFixture(t)
		task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "Launch", Tags: []string{"a", " a ", "b", ""}})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusTodo, task.Status)
		require.Equal(t, models.TaskPriorityMedium, task.Priority)
		require.Equal(t, []string{"a", "b"}, task.Tags)
		require.Equal(t, "user-1", task.CreatedBy)
		require.Nil(t, task.AssigneeID)
		require.Empty(t, f.events.Events())
	})

	t.Run("assignee in project", func(t *testing.T) {
		f := newFixture(t)
		task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "Launch", AssigneeID: "user-1", Priority: "high"})
		require.NoError(t, err)
		require.Equal(t, "user-1", *task.AssigneeID)
		require.Equal(t, models.TaskPriorityHigh, task.Priority)

		events := f.events.Events()
		require.Len(t, events, 1)
		require.Equal(t, notify.TaskAssigned, events[0].Type)
	})

	tests := []struct {
		name    string
		project func(f *fixture) string
		req     CreateRequest
		kind    apperr.Kind
	}{
		{name: "assignee outside project", project: func(f *fixture) string { return f.project.ProjectID }, req: CreateRequest{Title: "x", AssigneeID: "user-2"}, kind: apperr.BadRequest},
		{name: "missing title", project: func(f *fixture) string { return f.project.ProjectID }, req: CreateRequest{}, kind: apperr.BadRequest},
		{name: "bad priority", project: func(f *fixture) string { return f.project.ProjectID }, req: CreateRequest{Title: "x", Priority: "CRITICAL"}, kind: apperr.Validation},
		{name: "unknown project", project: func(f *fixture) string { return "nonexistent" }, req: CreateRequest{Title: "x"}, kind: apperr.NotFound},
		{name: "foreign project", project: func(f *fixture) string { return f.foreign.ProjectID }, req: CreateRequest{Title: "x"}, kind: apperr.Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.req.ProjectID = tt.project(f)
			_, err := f.svc.Create(ctx, orgID, "user-1", tt.req)
			requireKind(t, err, tt.kind)
		})
	}
}

func TestGet_RevalidatesProjectOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "Launch"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, orgID, task.TaskID)
	require.NoError(t, err)
	require.Equal(t, task.TaskID, got.TaskID)

	_, err = f.svc.Get(ctx, "org-2", task.TaskID)
	requireKind(t, err, apperr.Forbidden)

	_, err = f.svc.Get(ctx, orgID, "nonexistent")
	requireKind(t, err, apperr.NotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	second, err := f.projects.Create(ctx, orgID, "user-1", projects.CreateRequest{Name: "Artemis"})
	require.NoError(t, err)

	for _, req := range []CreateRequest{
		{ProjectID: f.project.ProjectID, Title: "Write docs", Priority: "HIGH"},
		{ProjectID: f.project.ProjectID, Title: "Fix DOCS typo", Priority: "LOW"},
		{ProjectID: second.ProjectID, Title: "Docs site", Priority: "HIGH"},
	} {
		_, err := f.svc.Create(ctx, orgID, "user-1", req)
		require.NoError(t, err)
	}
	_, err = f.svc.Create(ctx, "org-2", "user-9", CreateRequest{ProjectID: f.foreign.ProjectID, Title: "Docs elsewhere"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    ListQuery
		expected int64
	}{
		{name: "organization wide", query: ListQuery{}, expected: 3},
		{name: "search", query: ListQuery{Search: "docs"}, expected: 3},
		{name: "priority", query: ListQuery{Priority: "high"}, expected: 2},
		{name: "project scoped", query: ListQuery{ProjectID: f.project.ProjectID}, expected: 2},
		{name: "project scoped with filter", query: ListQuery{ProjectID: f.project.ProjectID, Priority: "LOW"}, expected: 1},
		{name: "status", query: ListQuery{Status: "DONE"}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.svc.List(ctx, orgID, tt.query, store.Page{Limit: 20})
			require.NoError(t, err)
			require.Len(t, list, int(tt.expected))

			count, err := f.svc.Count(ctx, orgID, tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.expected, count)
		})
	}

	_, err = f.svc.List(ctx, orgID, ListQuery{ProjectID: f.foreign.ProjectID}, store.Page{Limit: 20})
	requireKind(t, err, apperr.Forbidden)

	_, err = f.svc.Count(ctx, orgID, ListQuery{Status: "BLOCKED"})
	requireKind(t, err, apperr.Validation)

	empty, err := f.svc.List(ctx, "org-without-projects", ListQuery{}, store.Page{Limit: 20})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestFilterByDateRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, due := range []string{"2023-12-31", "2024-01-01", "2024-01-15", "2024-01-31"} {
		_, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "due " + due, DueDate: day(t, due)})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "no due date"})
	require.NoError(t, err)

	start, end := *day(t, "2024-01-01"), *day(t, "2024-01-31")

	list, err := f.svc.FilterByDateRange(ctx, orgID, f.project.ProjectID, start, end, store.Page{Limit: 20})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "due 2024-01-01", list[0].Title)
	require.Equal(t, "due 2024-01-15", list[1].Title)

	count, err := f.svc.CountByDateRange(ctx, orgID, f.project.ProjectID, start, end)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	_, err = f.svc.FilterByDateRange(ctx, orgID, f.foreign.ProjectID, start, end, store.Page{Limit: 20})
	requireKind(t, err, apperr.Forbidden)

	_, err = f.svc.FilterByDateRange(ctx, orgID, f.project.ProjectID, end, start, store.Page{Limit: 20})
	requireKind(t, err, apperr.BadRequest)
}

func TestFilterByDateRange_ExcludesDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "gone", DueDate: day(t, "2024-01-10")})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, orgID, task.TaskID))

	list, err := f.svc.FilterByDateRange(ctx, orgID, f.project.ProjectID, *day(t, "2024-01-01"), *day(t, "2024-02-01"), store.Page{Limit: 20})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "Launch", Tags: []string{"x"}})
	require.NoError(t, err)

	// assignee membership is not re-checked on update
	updated, err := f.svc.Update(ctx, orgID, task.TaskID, "user-1", UpdateRequest{
		Title:      ptr("Launch v2"),
		AssigneeID: ptr("user-2"),
		Priority:   ptr("urgent"),
		DueDate:    day(t, "2024-03-01"),
	})
	require.NoError(t, err)
	require.Equal(t, "Launch v2", updated.Title)
	require.Equal(t, "user-2", *updated.AssigneeID)
	require.Equal(t, models.TaskPriorityUrgent, updated.Priority)
	require.Equal(t, []string{"x"}, updated.Tags)
	require.Equal(t, models.TaskStatusTodo, updated.Status)

	events := f.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, "user-2", events[0].AssigneeID)

	cleared, err := f.svc.Update(ctx, orgID, task.TaskID, "user-1", UpdateRequest{AssigneeID: ptr("")})
	require.NoError(t, err)
	require.Nil(t, cleared.AssigneeID)

	_, err = f.svc.Update(ctx, orgID, task.TaskID, "user-1", UpdateRequest{Priority: ptr("whenever")})
	requireKind(t, err, apperr.Validation)

	_, err = f.svc.Update(ctx, "org-2", task.TaskID, "user-9", UpdateRequest{Title: ptr("stolen")})
	requireKind(t, err, apperr.Forbidden)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "Launch"})
	require.NoError(t, err)

	// no transition graph: TODO straight to DONE and back is allowed
	for _, status := range []string{"DONE", "todo", "IN_REVIEW", "IN_PROGRESS"} {
		updated, err := f.svc.UpdateStatus(ctx, orgID, task.TaskID, "user-1", status)
		require.NoError(t, err)
		parsed, _ := models.ParseTaskStatus(status)
		require.Equal(t, parsed, updated.Status)
	}
	require.Len(t, f.events.Events(), 4)

	_, err = f.svc.UpdateStatus(ctx, orgID, task.TaskID, "user-1", "ARCHIVED")
	requireKind(t, err, apperr.Validation)
	require.EqualError(t, err, "Invalid task status: ARCHIVED")

	_, err = f.svc.UpdateStatus(ctx, orgID, "nonexistent", "user-1", "DONE")
	requireKind(t, err, apperr.NotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := f.svc.Create(ctx, orgID, "user-1", CreateRequest{ProjectID: f.project.ProjectID, Title: "Launch"})
	require.NoError(t, err)

	requireKind(t, f.svc.Delete(ctx, "org-2", task.TaskID), apperr.Forbidden)
	require.NoError(t, f.svc.Delete(ctx, orgID, task.TaskID))
	requireKind(t, f.svc.Delete(ctx, orgID, task.TaskID), apperr.NotFound)
}

func ptr[T any](v T) *T {
	return &v
}
