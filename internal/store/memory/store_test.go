package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

func TestOrganizationStore_SlugUniqueness(t *testing.T) {
	st := NewOrganizationStore(NewMemberStore())
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, &models.Organization{OrgID: "org-1", Name: "Acme", Slug: "acme"}))

	err := st.Create(ctx, &models.Organization{OrgID: "org-2", Name: "ACME", Slug: "acme"})
	require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)

	org, err := st.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "org-1", org.OrgID)

	_, err = st.Get(ctx, "nonexistent")
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
}

func TestOrganizationStore_SettingsAreCloned(t *testing.T) {
	st := NewOrganizationStore(NewMemberStore())
	ctx := context.Background()

	org := &models.Organization{OrgID: "org-1", Slug: "acme", Settings: map[string]any{"theme": "dark"}}
	require.NoError(t, st.Create(ctx, org))
	org.Settings["theme"] = "light"

	got, err := st.Get(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, "dark", got.Settings["theme"])
}

func TestOrganizationStore_CreateWithOwner(t *testing.T) {
	ctx := context.Background()
	members := NewMemberStore()
	st := NewOrganizationStore(members)

	owner := func(orgID string) *models.Member {
		return &models.Member{MemberID: "user-1", OrgID: orgID, Email: "ada@acme.io", Role: models.RoleOwner}
	}

	require.NoError(t, st.CreateWithOwner(ctx, &models.Organization{OrgID: "org-1", Slug: "acme"}, owner("org-1")))

	tests := []struct {
		name    string
		org     *models.Organization
		wantErr error
	}{
		{name: "owner already a member", org: &models.Organization{OrgID: "org-2", Slug: "globex"}, wantErr: store.ErrMemberAlreadyExists},
		{name: "slug taken", org: &models.Organization{OrgID: "org-3", Slug: "acme"}, wantErr: store.ErrOrganizationAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := st.CreateWithOwner(ctx, tt.org, owner(tt.org.OrgID))
			require.ErrorIs(t, err, tt.wantErr)

			_, err = st.Get(ctx, tt.org.OrgID)
			require.ErrorIs(t, err, store.ErrOrganizationNotFound)

			got, err := members.Get(ctx, "user-1")
			require.NoError(t, err)
			require.Equal(t, "org-1", got.OrgID)
		})
	}
}

func TestMemberStore(t *testing.T) {
	ctx := context.Background()

	t.Run("email unique within organization", func(t *testing.T) {
		st := NewMemberStore()
		require.NoError(t, st.Create(ctx, &models.Member{MemberID: "m1", OrgID: "org-1", Email: "a@example.com"}))

		err := st.Create(ctx, &models.Member{MemberID: "m2", OrgID: "org-1", Email: "A@example.com"})
		require.ErrorIs(t, err, store.ErrMemberAlreadyExists)

		require.NoError(t, st.Create(ctx, &models.Member{MemberID: "m3", OrgID: "org-2", Email: "a@example.com"}))
	})

	t.Run("soft deleted members are hidden", func(t *testing.T) {
		st := NewMemberStore()
		require.NoError(t, st.Create(ctx, &models.Member{MemberID: "m1", OrgID: "org-1", Email: "a@example.com"}))
		require.NoError(t, st.Create(ctx, &models.Member{MemberID: "m2", OrgID: "org-1", Email: "b@example.com"}))

		require.NoError(t, st.SoftDelete(ctx, "m1"))

		_, err := st.Get(ctx, "m1")
		require.ErrorIs(t, err, store.ErrMemberNotFound)

		count, err := st.CountByOrg(ctx, "org-1")
		require.NoError(t, err)
		require.Equal(t, int64(1), count)

		require.ErrorIs(t, st.SoftDelete(ctx, "m1"), store.ErrMemberNotFound)

		// the email is free again once the member is removed
		require.NoError(t, st.Create(ctx, &models.Member{MemberID: "m4", OrgID: "org-1", Email: "a@example.com"}))
	})

	t.Run("list is paginated newest first", func(t *testing.T) {
		st := NewMemberStore()
		base := time.Now()
		for i, id := range []string{"m1", "m2", "m3"} {
			require.NoError(t, st.Create(ctx, &models.Member{
				MemberID:  id,
				OrgID:     "org-1",
				Email:     id + "@example.com",
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}

		page, err := st.ListByOrg(ctx, "org-1", store.Page{Skip: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.Equal(t, "m2", page[0].MemberID)

		page, err = st.ListByOrg(ctx, "org-1", store.Page{Skip: 5, Limit: 1})
		require.NoError(t, err)
		require.Empty(t, page)
	})
}

func TestProjectStore(t *testing.T) {
	ctx := context.Background()
	st := NewProjectStore()

	require.NoError(t, st.Create(ctx, &models.Project{ProjectID: "p1", OrgID: "org-1", Status: models.ProjectStatusActive, MemberIDs: []string{"u1"}}))
	require.NoError(t, st.Create(ctx, &models.Project{ProjectID: "p2", OrgID: "org-1", Status: models.ProjectStatusActive}))
	require.NoError(t, st.Create(ctx, &models.Project{ProjectID: "p3", OrgID: "org-2", Status: models.ProjectStatusActive}))

	archived := models.ProjectStatusArchived
	now := time.Now()
	require.NoError(t, st.Update(ctx, "p2", store.ProjectPatch{Status: &archived, ArchivedBy: ptr("u1"), ArchivedAt: &now}))

	p2, err := st.Get(ctx, "p2")
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusArchived, p2.Status)
	require.Equal(t, "u1", *p2.ArchivedBy)

	count, err := st.CountByOrg(ctx, "org-1", &archived)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	list, err := st.ListArchived(ctx, "org-1", store.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, st.AddMember(ctx, "p1", "u2"))
	require.NoError(t, st.AddMember(ctx, "p1", "u2"))
	p1, err := st.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, p1.MemberIDs)

	byMember, err := st.CountByMember(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"u1": 1, "u2": 1}, byMember)

	require.NoError(t, st.SoftDelete(ctx, "p1"))
	byMember, err = st.CountByMember(ctx, "org-1")
	require.NoError(t, err)
	require.Empty(t, byMember)

	ids, err := st.ListIDs(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, ids)

	require.ErrorIs(t, st.Update(ctx, "p1", store.ProjectPatch{}), store.ErrProjectNotFound)
}

func TestTaskStore_Filter(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore()

	day := func(s string) *time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return &d
	}

	tasks := []*models.Task{
		{TaskID: "t1", ProjectID: "p1", Title: "Write Docs", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh, DueDate: day("2024-01-01")},
		{TaskID: "t2", ProjectID: "p1", Title: "fix docs build", Status: models.TaskStatusDone, Priority: models.TaskPriorityLow, DueDate: day("2024-01-31")},
		{TaskID: "t3", ProjectID: "p1", Title: "Release", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh, DueDate: day("2024-01-15")},
		{TaskID: "t4", ProjectID: "p2", Title: "Docs elsewhere", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh},
	}
	for _, task := range tasks {
		require.NoError(t, st.Create(ctx, task))
	}

	todo := models.TaskStatusTodo
	high := models.TaskPriorityHigh

	tests := []struct {
		name     string
		filter   store.TaskFilter
		expected []string
	}{
		{name: "project scope", filter: store.TaskFilter{ProjectIDs: []string{"p2"}}, expected: []string{"t4"}},
		{name: "search is case insensitive", filter: store.TaskFilter{ProjectIDs: []string{"p1", "p2"}, Search: "DOCS"}, expected: []string{"t1", "t2", "t4"}},
		{name: "status and priority", filter: store.TaskFilter{ProjectIDs: []string{"p1"}, Status: &todo, Priority: &high}, expected: []string{"t1", "t3"}},
		{name: "half open due range", filter: store.TaskFilter{ProjectIDs: []string{"p1"}, DueFrom: day("2024-01-01"), DueBefore: day("2024-01-31")}, expected: []string{"t1", "t3"}},
		{name: "no projects matches nothing", filter: store.TaskFilter{}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := st.List(ctx, tt.filter, store.Page{Limit: 100})
			require.NoError(t, err)

			var ids []string
			for _, task := range list {
				ids = append(ids, task.TaskID)
			}
			require.ElementsMatch(t, tt.expected, ids)

			count, err := st.Count(ctx, tt.filter)
			require.NoError(t, err)
			require.Equal(t, int64(len(tt.expected)), count)
		})
	}
}

func TestTaskStore_CountGrouped(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore()

	tasks := []*models.Task{
		{TaskID: "t1", ProjectID: "p1", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh, AssigneeID: ptr("u1")},
		{TaskID: "t2", ProjectID: "p1", Status: models.TaskStatusDone, Priority: models.TaskPriorityHigh, AssigneeID: ptr("u1")},
		{TaskID: "t3", ProjectID: "p2", Status: models.TaskStatusTodo, Priority: models.TaskPriorityLow},
		{TaskID: "t4", ProjectID: "p3", Status: models.TaskStatusTodo, Priority: models.TaskPriorityLow, AssigneeID: ptr("u2")},
	}
	for _, task := range tasks {
		require.NoError(t, st.Create(ctx, task))
	}
	require.NoError(t, st.Create(ctx, &models.Task{TaskID: "t5", ProjectID: "p1", Status: models.TaskStatusTodo}))
	require.NoError(t, st.SoftDelete(ctx, "t5"))

	projects := []string{"p1", "p2"}

	tests := []struct {
		by       store.TaskGrouping
		expected map[string]int64
	}{
		{by: store.GroupByStatus, expected: map[string]int64{"TODO": 2, "DONE": 1}},
		{by: store.GroupByPriority, expected: map[string]int64{"HIGH": 2, "LOW": 1}},
		{by: store.GroupByProject, expected: map[string]int64{"p1": 2, "p2": 1}},
		{by: store.GroupByAssignee, expected: map[string]int64{"u1": 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			counts, err := st.CountGrouped(ctx, projects, tt.by)
			require.NoError(t, err)
			require.Equal(t, tt.expected, counts)
		})
	}

	_, err := st.CountGrouped(ctx, projects, store.TaskGrouping("title"))
	require.Error(t, err)
}

func TestTaskStore_ListRecent(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, st.Create(ctx, &models.Task{TaskID: id, ProjectID: "p1", UpdatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, st.Create(ctx, &models.Task{TaskID: "t4", ProjectID: "p2", UpdatedAt: base.Add(time.Hour * 24)}))

	list, err := st.ListRecent(ctx, []string{"p1"}, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "t3", list[0].TaskID)
	require.Equal(t, "t2", list[1].TaskID)
}

func TestTaskStore_UpdateClearsAssignee(t *testing.T) {
	ctx := context.Background()
	st := NewTaskStore()

	require.NoError(t, st.Create(ctx, &models.Task{TaskID: "t1", ProjectID: "p1", AssigneeID: ptr("u1")}))
	require.NoError(t, st.Update(ctx, "t1", store.TaskPatch{AssigneeID: ptr("")}))

	task, err := st.Get(ctx, "t1")
	require.NoError(t, err)
	require.Nil(t, task.AssigneeID)
}

func TestAPIKeyStore(t *testing.T) {
	ctx := context.Background()
	st := NewAPIKeyStore()

	require.NoError(t, st.Create(ctx, &models.APIKey{KeyID: "k1", OrgID: "org-1", KeyHash: "h1"}))

	key, err := st.GetByHash(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "k1", key.KeyID)

	require.NoError(t, st.Revoke(ctx, "k1", time.Now()))

	keys, err := st.ListByOrg(ctx, "org-1")
	require.NoError(t, err)
	require.Empty(t, keys)

	_, err = st.GetByHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrAPIKeyNotFound)
}
