// Package seed loads YAML fixtures into a set of stores.
//
// Fixtures are written straight to the stores, so billing quotas and role checks
// are not applied. Member ids given in the fixture are kept, which lets fixtures
// line up with the subjects of development tokens.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

type Fixture struct {
	Plans         []Plan         `yaml:"plans"`
	Organizations []Organization `yaml:"organizations"`
}

type Plan struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Tier          string   `yaml:"tier"`
	MaxMembers    int      `yaml:"maxMembers"`
	MaxProjects   int      `yaml:"maxProjects"`
	PricePerMonth float64  `yaml:"pricePerMonth"`
	Features      []string `yaml:"features"`
}

type Organization struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Plan     string         `yaml:"plan"`
	Settings map[string]any `yaml:"settings"`
	Members  []Member       `yaml:"members"`
	Projects []Project      `yaml:"projects"`
}

type Member struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
}

type Project struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Archived    bool     `yaml:"archived"`
	CreatedBy   string   `yaml:"createdBy"`
	Members     []string `yaml:"members"`
	Tasks       []Task   `yaml:"tasks"`
}

type Task struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Priority    string   `yaml:"priority"`
	Assignee    string   `yaml:"assignee"`
	Due         string   `yaml:"due"`
	Tags        []string `yaml:"tags"`
}

// Result counts the records written by Load.
type Result struct {
	Plans         int
	Organizations int
	Members       int
	Projects      int
	Tasks         int
}

// Parse decodes a fixture, rejecting unknown fields.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

// Load writes every record in f to stores. It stops at the first failure and
// does not undo records already written.
func Load(ctx context.Context, stores store.Stores, f *Fixture) (*Result, error) {
	res := &Result{}
	now := time.Now().UTC()

	for _, p := range f.Plans {
		if err := stores.BillingPlans.Put(ctx, p.model()); err != nil {
			return res, fmt.Errorf("failed to put plan %q: %w", p.ID, err)
		}
		res.Plans++
	}

	for _, o := range f.Organizations {
		if err := loadOrganization(ctx, stores, o, now, res); err != nil {
			return res, fmt.Errorf("organization %q: %w", o.Name, err)
		}
	}

	log.Info().
		Int("plans", res.Plans).
		Int("organizations", res.Organizations).
		Int("members", res.Members).
		Int("projects", res.Projects).
		Int("tasks", res.Tasks).
		Msg("Fixture loaded")

	return res, nil
}

func (p Plan) model() *models.BillingPlan {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &models.BillingPlan{
		PlanID:        p.ID,
		Name:          p.Name,
		Tier:          models.Tier(strings.ToUpper(p.Tier)),
		MaxMembers:    p.MaxMembers,
		MaxProjects:   p.MaxProjects,
		PricePerMonth: p.PricePerMonth,
		Features:      features,
	}
}

func loadOrganization(ctx context.Context, stores store.Stores, o Organization, now time.Time, res *Result) error {
	orgID, err := idOr(o.ID)
	if err != nil {
		return err
	}

	plan := o.Plan
	if plan == "" {
		plan = models.DefaultPlanID
	}
	settings := o.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	org := &models.Organization{
		OrgID:         orgID,
		Name:          o.Name,
		Slug:          models.Slugify(o.Name),
		BillingPlanID: plan,
		Settings:      settings,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := stores.Organizations.Create(ctx, org); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	res.Organizations++

	for _, m := range o.Members {
		role, err := models.ParseRole(m.Role)
		if err != nil {
			return fmt.Errorf("member %q: %w", m.Email, err)
		}
		memberID, err := idOr(m.ID)
		if err != nil {
			return err
		}

		joined := now
		member := &models.Member{
			MemberID:  memberID,
			OrgID:     orgID,
			Email:     strings.ToLower(strings.TrimSpace(m.Email)),
			Name:      m.Name,
			Role:      role,
			InvitedAt: now,
			JoinedAt:  &joined,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := stores.Members.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to create member %q: %w", m.Email, err)
		}
		res.Members++
	}

	for _, p := range o.Projects {
		if err := loadProject(ctx, stores, orgID, p, now, res); err != nil {
			return fmt.Errorf("project %q: %w", p.Name, err)
		}
	}

	return nil
}

func loadProject(ctx context.Context, stores store.Stores, orgID string, p Project, now time.Time, res *Result) error {
	projectID, err := idOr(p.ID)
	if err != nil {
		return err
	}

	memberIDs := make([]string, 0, len(p.Members)+1)
	if p.CreatedBy != "" {
		memberIDs = append(memberIDs, p.CreatedBy)
	}
	for _, id := range p.Members {
		if id != p.CreatedBy {
			memberIDs = append(memberIDs, id)
		}
	}

	project := &models.Project{
		ProjectID:   projectID,
		OrgID:       orgID,
		Name:        p.Name,
		Description: p.Description,
		Status:      models.ProjectStatusActive,
		MemberIDs:   memberIDs,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Archived {
		project.Status = models.ProjectStatusArchived
		project.ArchivedBy = &p.CreatedBy
		project.ArchivedAt = &now
	}

	if err := stores.Projects.Create(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	res.Projects++

	for _, t := range p.Tasks {
		task, err := t.model(project, now)
		if err != nil {
			return fmt.Errorf("task %q: %w", t.Title, err)
		}
		if err := stores.Tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task %q: %w", t.Title, err)
		}
		res.Tasks++
	}

	return nil
}

func (t Task) model(project *models.Project, now time.Time) (*models.Task, error) {
	status := models.TaskStatusTodo
	if t.Status != "" {
		s, err := models.ParseTaskStatus(t.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	priority := models.TaskPriorityMedium
	if t.Priority != "" {
		p, err := models.ParseTaskPriority(t.Priority)
		if err != nil {
			return nil, err
		}
		priority = p
	}

	taskID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	task := &models.Task{
		TaskID:      taskID.String(),
		ProjectID:   project.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
		Priority:    priority,
		Tags:        t.Tags,
		CreatedBy:   project.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if t.Assignee != "" {
		if !project.HasMember(t.Assignee) {
			return nil, fmt.Errorf("assignee %q is not a member of the project", t.Assignee)
		}
		assignee := t.Assignee
		task.AssigneeID = &assignee
	}

	if t.Due != "" {
		due, err := time.Parse(time.DateOnly, t.Due)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", t.Due, err)
		}
		task.DueDate = &due
	}

	return task, nil
}

func idOr(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return v.String(), nil
}
