//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (store.Stores, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	stores, pool, err := Open(ctx, &PoolConfig{ConnString: connString}, true)
	require.NoError(t, err)

	// migrations are idempotent
	require.NoError(t, Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return stores, cleanup
}

func seedOrganization(t *testing.T, ctx context.Context, stores store.Stores, id, slug string) *models.Organization {
	now := time.Now().UTC()
	org := &models.Organization{
		OrgID:         id,
		Name:          slug,
		Slug:          slug,
		BillingPlanID: models.DefaultPlanID,
		Settings:      map[string]any{"theme": "dark"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, stores.Organizations.Create(ctx, org))
	return org
}

func TestIntegration_Stores(t *testing.T) {
	ctx := context.Background()
	stores, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	acme := seedOrganization(t, ctx, stores, "org-acme", "acme")
	seedOrganization(t, ctx, stores, "org-globex", "globex")

	t.Run("organizations", func(t *testing.T) {
		got, err := stores.Organizations.GetBySlug(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, acme.OrgID, got.OrgID)
		require.Equal(t, "dark", got.Settings["theme"])

		err = stores.Organizations.Create(ctx, &models.Organization{OrgID: "org-dup", Slug: "acme", Name: "dup"})
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)

		got.Slug = "globex"
		require.ErrorIs(t, stores.Organizations.Update(ctx, got), store.ErrOrganizationAlreadyExists)

		_, err = stores.Organizations.Get(ctx, "nonexistent")
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})

	t.Run("organization with owner is atomic", func(t *testing.T) {
		now := time.Now().UTC()
		newOrg := func(id, slug string) *models.Organization {
			return &models.Organization{OrgID: id, Name: slug, Slug: slug, BillingPlanID: models.DefaultPlanID, CreatedAt: now, UpdatedAt: now}
		}
		owner := func(orgID string) *models.Member {
			return &models.Member{MemberID: "owner-1", OrgID: orgID, Email: "owner@initech.io", Role: models.RoleOwner, InvitedAt: now, JoinedAt: &now, CreatedAt: now, UpdatedAt: now}
		}

		require.NoError(t, stores.Organizations.CreateWithOwner(ctx, newOrg("org-initech", "initech"), owner("org-initech")))
		got, err := stores.Members.Get(ctx, "owner-1")
		require.NoError(t, err)
		require.Equal(t, "org-initech", got.OrgID)

		err = stores.Organizations.CreateWithOwner(ctx, newOrg("org-hooli", "hooli"), owner("org-hooli"))
		require.ErrorIs(t, err, store.ErrMemberAlreadyExists)
		_, err = stores.Organizations.GetBySlug(ctx, "hooli")
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)

		err = stores.Organizations.CreateWithOwner(ctx, newOrg("org-acme-2", "acme"), owner("org-acme-2"))
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)
	})

	t.Run("billing plans are seeded", func(t *testing.T) {
		plan, err := stores.BillingPlans.Get(ctx, models.DefaultPlanID)
		require.NoError(t, err)
		require.Equal(t, 5, plan.MaxMembers)
		require.Equal(t, 3, plan.MaxProjects)

		enterprise, err := stores.BillingPlans.GetByTier(ctx, models.TierEnterprise)
		require.NoError(t, err)
		require.Equal(t, models.Unlimited, enterprise.MaxMembers)
		require.InDelta(t, 99.99, enterprise.PricePerMonth, 0.001)
	})

	t.Run("members", func(t *testing.T) {
		now := time.Now().UTC()
		member := &models.Member{
			MemberID:  "member-1",
			OrgID:     acme.OrgID,
			Email:     "ada@acme.io",
			Role:      models.RoleMember,
			InvitedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, stores.Members.Create(ctx, member))

		dup := *member
		dup.MemberID = "member-2"
		dup.Email = "ADA@acme.io"
		require.ErrorIs(t, stores.Members.Create(ctx, &dup), store.ErrMemberAlreadyExists)

		got, err := stores.Members.GetByEmail(ctx, acme.OrgID, "Ada@Acme.io")
		require.NoError(t, err)
		require.Equal(t, "member-1", got.MemberID)

		require.NoError(t, stores.Members.UpdateRole(ctx, "member-1", models.RoleAdmin))
		got, err = stores.Members.Get(ctx, "member-1")
		require.NoError(t, err)
		require.Equal(t, models.RoleAdmin, got.Role)

		require.NoError(t, stores.Members.SoftDelete(ctx, "member-1"))
		_, err = stores.Members.Get(ctx, "member-1")
		require.ErrorIs(t, err, store.ErrMemberNotFound)

		// the email is free again once the member is removed
		require.NoError(t, stores.Members.Create(ctx, &dup))

		count, err := stores.Members.CountByOrg(ctx, acme.OrgID)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})

	t.Run("projects", func(t *testing.T) {
		now := time.Now().UTC()
		for i, name := range []string{"alpha", "beta", "gamma"} {
			require.NoError(t, stores.Projects.Create(ctx, &models.Project{
				ProjectID: "project-" + name,
				OrgID:     acme.OrgID,
				Name:      name,
				Status:    models.ProjectStatusActive,
				MemberIDs: []string{"user-1"},
				CreatedBy: "user-1",
				CreatedAt: now.Add(time.Duration(i) * time.Second),
				UpdatedAt: now,
			}))
		}

		archived := models.ProjectStatusArchived
		by := "user-1"
		at := time.Now().UTC()
		require.NoError(t, stores.Projects.Update(ctx, "project-beta", store.ProjectPatch{
			Status:     &archived,
			ArchivedBy: &by,
			ArchivedAt: &at,
		}))

		list, err := stores.Projects.ListByOrg(ctx, acme.OrgID, nil, store.Page{Limit: 2})
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "project-gamma", list[0].ProjectID)

		count, err := stores.Projects.CountByOrg(ctx, acme.OrgID, &archived)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		archivedList, err := stores.Projects.ListArchived(ctx, acme.OrgID, store.Page{})
		require.NoError(t, err)
		require.Len(t, archivedList, 1)
		require.Equal(t, "user-1", *archivedList[0].ArchivedBy)
		require.Equal(t, "beta", archivedList[0].Name)

		require.NoError(t, stores.Projects.AddMember(ctx, "project-alpha", "user-2"))
		require.NoError(t, stores.Projects.AddMember(ctx, "project-alpha", "user-2"))
		p, err := stores.Projects.Get(ctx, "project-alpha")
		require.NoError(t, err)
		require.Equal(t, []string{"user-1", "user-2"}, p.MemberIDs)

		require.NoError(t, stores.Projects.RemoveMember(ctx, "project-alpha", "user-2"))
		p, err = stores.Projects.Get(ctx, "project-alpha")
		require.NoError(t, err)
		require.Equal(t, []string{"user-1"}, p.MemberIDs)

		byMember, err := stores.Projects.CountByMember(ctx, acme.OrgID)
		require.NoError(t, err)
		require.Equal(t, map[string]int64{"user-1": 3}, byMember)

		require.NoError(t, stores.Projects.SoftDelete(ctx, "project-gamma"))
		ids, err := stores.Projects.ListIDs(ctx, acme.OrgID)
		require.NoError(t, err)
		require.Equal(t, []string{"project-alpha", "project-beta"}, ids)

		require.ErrorIs(t, stores.Projects.Update(ctx, "project-gamma", store.ProjectPatch{}), store.ErrProjectNotFound)
	})

	t.Run("tasks", func(t *testing.T) {
		now := time.Now().UTC()
		day := func(d int) *time.Time {
			v := time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
			return &v
		}
		assignee := "user-1"
		tasks := []*models.Task{
			{TaskID: "task-1", Title: "Write 100% of docs", DueDate: day(5), Priority: models.TaskPriorityHigh, AssigneeID: &assignee},
			{TaskID: "task-2", Title: "Fix login_flow", DueDate: day(1), Priority: models.TaskPriorityLow},
			{TaskID: "task-3", Title: "Release", DueDate: day(10), Priority: models.TaskPriorityHigh},
		}
		for _, task := range tasks {
			task.ProjectID = "project-alpha"
			task.Status = models.TaskStatusTodo
			task.CreatedBy = "user-1"
			task.CreatedAt = now
			task.UpdatedAt = now
			require.NoError(t, stores.Tasks.Create(ctx, task))
		}

		filter := store.TaskFilter{ProjectIDs: []string{"project-alpha"}, DueFrom: day(1), DueBefore: day(10)}
		list, err := stores.Tasks.List(ctx, filter, store.Page{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "task-2", list[0].TaskID)
		require.Equal(t, "task-1", list[1].TaskID)

		// LIKE metacharacters match literally
		count, err := stores.Tasks.Count(ctx, store.TaskFilter{ProjectIDs: []string{"project-alpha"}, Search: "100%"})
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
		count, err = stores.Tasks.Count(ctx, store.TaskFilter{ProjectIDs: []string{"project-alpha"}, Search: "n_f"})
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		high := models.TaskPriorityHigh
		count, err = stores.Tasks.Count(ctx, store.TaskFilter{ProjectIDs: []string{"project-alpha"}, Priority: &high})
		require.NoError(t, err)
		require.EqualValues(t, 2, count)

		count, err = stores.Tasks.Count(ctx, store.TaskFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 0, count)

		alpha := []string{"project-alpha"}
		byPriority, err := stores.Tasks.CountGrouped(ctx, alpha, store.GroupByPriority)
		require.NoError(t, err)
		require.Equal(t, map[string]int64{"HIGH": 2, "LOW": 1}, byPriority)

		byAssignee, err := stores.Tasks.CountGrouped(ctx, alpha, store.GroupByAssignee)
		require.NoError(t, err)
		require.Equal(t, map[string]int64{"user-1": 1}, byAssignee)

		recent, err := stores.Tasks.ListRecent(ctx, alpha, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)

		unassigned := ""
		done := models.TaskStatusDone
		require.NoError(t, stores.Tasks.Update(ctx, "task-1", store.TaskPatch{
			AssigneeID: &unassigned,
			Status:     &done,
			Tags:       []string{"docs"},
		}))
		got, err := stores.Tasks.Get(ctx, "task-1")
		require.NoError(t, err)
		require.Nil(t, got.AssigneeID)
		require.Equal(t, models.TaskStatusDone, got.Status)
		require.Equal(t, []string{"docs"}, got.Tags)
		require.Equal(t, "Write 100% of docs", got.Title)

		require.NoError(t, stores.Tasks.SoftDelete(ctx, "task-1"))
		_, err = stores.Tasks.Get(ctx, "task-1")
		require.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("api keys", func(t *testing.T) {
		key := &models.APIKey{
			KeyID:     "key-1",
			OrgID:     acme.OrgID,
			Name:      "ci",
			Prefix:    "thub_abcdefg",
			KeyHash:   "deadbeef",
			CreatedBy: "user-1",
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, stores.APIKeys.Create(ctx, key))

		got, err := stores.APIKeys.GetByHash(ctx, "deadbeef")
		require.NoError(t, err)
		require.Equal(t, "key-1", got.KeyID)

		require.NoError(t, stores.APIKeys.TouchLastUsed(ctx, "key-1", time.Now().UTC()))
		require.NoError(t, stores.APIKeys.Revoke(ctx, "key-1", time.Now().UTC()))

		keys, err := stores.APIKeys.ListByOrg(ctx, acme.OrgID)
		require.NoError(t, err)
		require.Empty(t, keys)

		got, err = stores.APIKeys.Get(ctx, "key-1")
		require.NoError(t, err)
		require.NotNil(t, got.LastUsedAt)
		require.True(t, got.IsRevoked())
	})
}
