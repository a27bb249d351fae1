// Package analytics aggregates an organization's projects, tasks and members
// into dashboard summaries.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

const (
	// RecentActivityLimit is how many recently updated tasks the dashboard shows.
	RecentActivityLimit = 10

	maxMembers = 1000
)

var (
	taskStatuses   = []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusInReview, models.TaskStatusDone}
	taskPriorities = []models.TaskPriority{models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh, models.TaskPriorityUrgent}
)

type ProjectTotals struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Archived int64 `json:"archived"`
}

// TaskBreakdown counts tasks per status and per priority. Every known value is present.
type TaskBreakdown struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
}

// Activity is a recently touched task.
type Activity struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Dashboard struct {
	Projects       ProjectTotals `json:"projects"`
	Members        int64         `json:"members"`
	Tasks          TaskBreakdown `json:"tasks"`
	RecentActivity []Activity    `json:"recentActivity"`
}

type ProjectActivity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	TaskCount int64  `json:"taskCount"`
}

type TaskAnalytics struct {
	TaskBreakdown
	Projects []ProjectActivity `json:"projects"`
}

type MemberActivity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TaskCount    int64  `json:"taskCount"`
	ProjectCount int64  `json:"projectCount"`
}

type MemberAnalytics struct {
	Members []MemberActivity `json:"members"`
}

// Service computes read-only summaries. Every figure is scoped to one organization.
type Service struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	members  store.MemberStore
}

func NewService(stores store.Stores) *Service {
	return &Service{
		projects: stores.Projects,
		tasks:    stores.Tasks,
		members:  stores.Members,
	}
}

// Dashboard summarizes project, member and task totals with the latest task activity.
func (s *Service) Dashboard(ctx context.Context, orgID string) (*Dashboard, error) {
	projectIDs, err := s.projects.ListIDs(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project IDs: %w", err)
	}

	var (
		dash     Dashboard
		archived = models.ProjectStatusArchived
		active   = models.ProjectStatusActive
		recent   []*models.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.Projects.Active, err = s.projects.CountByOrg(gctx, orgID, &active)
		return err
	})
	g.Go(func() (err error) {
		dash.Projects.Archived, err = s.projects.CountByOrg(gctx, orgID, &archived)
		return err
	})
	g.Go(func() (err error) {
		dash.Members, err = s.members.CountByOrg(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		dash.Tasks, err = s.breakdown(gctx, projectIDs)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.tasks.ListRecent(gctx, projectIDs, RecentActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	dash.Projects.Total = dash.Projects.Active + dash.Projects.Archived
	dash.RecentActivity = make([]Activity, 0, len(recent))
	for _, t := range recent {
		dash.RecentActivity = append(dash.RecentActivity, Activity{
			ID:        t.TaskID,
			Title:     t.Title,
			Status:    string(t.Status),
			CreatedBy: t.CreatedBy,
			UpdatedAt: t.UpdatedAt,
		})
	}

	log.Debug().Str("org_id", orgID).Int("projects", len(projectIDs)).Msg("Built dashboard")

	return &dash, nil
}

// Tasks breaks tasks down by status and priority and counts tasks per project.
func (s *Service) Tasks(ctx context.Context, orgID string) (*TaskAnalytics, error) {
	projects, err := s.projects.ListByOrg(ctx, orgID, nil, store.Page{Limit: store.MaxProjectIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ProjectID)
	}

	var (
		result    TaskAnalytics
		byProject map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TaskBreakdown, err = s.breakdown(gctx, projectIDs)
		return err
	})
	g.Go(func() (err error) {
		byProject, err = s.tasks.CountGrouped(gctx, projectIDs, store.GroupByProject)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build task analytics: %w", err)
	}

	result.Projects = make([]ProjectActivity, 0, len(projects))
	for _, p := range projects {
		result.Projects = append(result.Projects, ProjectActivity{
			ID:        p.ProjectID,
			Name:      p.Name,
			Status:    string(p.Status),
			TaskCount: byProject[p.ProjectID],
		})
	}

	return &result, nil
}

// Members lists each member with the tasks assigned to them and the projects they belong to.
func (s *Service) Members(ctx context.Context, orgID string) (*MemberAnalytics, error) {
	var (
		members    []*models.Member
		byAssignee map[string]int64
		byMember   map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = s.members.ListByOrg(gctx, orgID, store.Page{Limit: maxMembers})
		return err
	})
	g.Go(func() error {
		projectIDs, err := s.projects.ListIDs(gctx, orgID)
		if err != nil {
			return err
		}
		byAssignee, err = s.tasks.CountGrouped(gctx, projectIDs, store.GroupByAssignee)
		return err
	})
	g.Go(func() (err error) {
		byMember, err = s.projects.CountByMember(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build member analytics: %w", err)
	}

	result := &MemberAnalytics{Members: make([]MemberActivity, 0, len(members))}
	for _, m := range members {
		result.Members = append(result.Members, MemberActivity{
			ID:           m.MemberID,
			Name:         m.Name,
			Email:        m.Email,
			Role:         string(m.Role),
			TaskCount:    byAssignee[m.MemberID],
			ProjectCount: byMember[m.MemberID],
		})
	}

	return result, nil
}

func (s *Service) breakdown(ctx context.Context, projectIDs []string) (TaskBreakdown, error) {
	byStatus, err := s.tasks.CountGrouped(ctx, projectIDs, store.GroupByStatus)
	if err != nil {
		return TaskBreakdown{}, err
	}
	byPriority, err := s.tasks.CountGrouped(ctx, projectIDs, store.GroupByPriority)
	if err != nil {
		return TaskBreakdown{}, err
	}

	b := TaskBreakdown{
		ByStatus:   make(map[string]int64, len(taskStatuses)),
		ByPriority: make(map[string]int64, len(taskPriorities)),
	}
	for _, st := range taskStatuses {
		b.ByStatus[string(st)] = byStatus[string(st)]
		b.Total += byStatus[string(st)]
	}
	for _, p := range taskPriorities {
		b.ByPriority[string(p)] = byPriority[string(p)]
	}
	return b, nil
}
