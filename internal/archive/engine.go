// Package archive implements bulk archive and restore of projects with per-item results.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
	"github.com/wolfeidau/teamhub/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of projects processed at once.
const DefaultConcurrency = 10

// ItemStatus is the outcome of one project in a bulk operation.
type ItemStatus string

const (
	StatusArchived ItemStatus = "archived"
	StatusRestored ItemStatus = "restored"
	StatusSkipped  ItemStatus = "skipped"
	StatusFailed   ItemStatus = "failed"
)

const (
	reasonNotFound        = "Project not found"
	reasonAccessDenied    = "Access denied"
	reasonAlreadyArchived = "Already archived"
	reasonNotArchived     = "Not archived"
)

// ItemResult reports what happened to one requested project.
type ItemResult struct {
	ProjectID string     `json:"projectId"`
	Status    ItemStatus `json:"status"`
	Reason    string     `json:"reason,omitempty"`
}

// ArchiveSummary counts only archived items as successes; skipped items count as failed.
type ArchiveSummary struct {
	Total    int `json:"total"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

type ArchiveResult struct {
	Results []ItemResult   `json:"results"`
	Summary ArchiveSummary `json:"summary"`
}

// RestoreSummary counts only restored items as successes; skipped items count as failed.
type RestoreSummary struct {
	Total    int `json:"total"`
	Restored int `json:"restored"`
	Failed   int `json:"failed"`
}

type RestoreResult struct {
	Results []ItemResult   `json:"results"`
	Summary RestoreSummary `json:"summary"`
}

// Summary is the archive dashboard for an organization.
type Summary struct {
	ArchivedProjects int64 `json:"archivedProjects"`
	ActiveProjects   int64 `json:"activeProjects"`
	TotalProjects    int64 `json:"totalProjects"`
}

// Engine runs bulk project state transitions.
type Engine struct {
	projects    store.ProjectStore
	concurrency int
	now         func() time.Time
}

// NewEngine creates an engine processing at most concurrency projects at once.
func NewEngine(projects store.ProjectStore, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		projects:    projects,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// transition describes one direction of the ACTIVE/ARCHIVED state machine.
type transition struct {
	name    string
	from    models.ProjectStatus
	done    ItemStatus
	skipped string
	patch   func(userID string, at time.Time) store.ProjectPatch
}

var (
	archiveTransition = transition{
		name:    "archive",
		from:    models.ProjectStatusActive,
		done:    StatusArchived,
		skipped: reasonAlreadyArchived,
		patch: func(userID string, at time.Time) store.ProjectPatch {
			status := models.ProjectStatusArchived
			return store.ProjectPatch{Status: &status, ArchivedBy: &userID, ArchivedAt: &at}
		},
	}
	restoreTransition = transition{
		name:    "restore",
		from:    models.ProjectStatusArchived,
		done:    StatusRestored,
		skipped: reasonNotArchived,
		patch: func(userID string, at time.Time) store.ProjectPatch {
			status := models.ProjectStatusActive
			return store.ProjectPatch{Status: &status, RestoredBy: &userID, RestoredAt: &at}
		},
	}
)

// BulkArchive archives each project independently. Results are in input order.
func (e *Engine) BulkArchive(ctx context.Context, orgID, userID string, projectIDs []string) *ArchiveResult {
	results, succeeded := e.run(ctx, orgID, userID, projectIDs, archiveTransition)
	return &ArchiveResult{
		Results: results,
		Summary: ArchiveSummary{
			Total:    len(projectIDs),
			Archived: succeeded,
			Failed:   len(projectIDs) - succeeded,
		},
	}
}

// BulkRestore restores each project independently. Results are in input order.
func (e *Engine) BulkRestore(ctx context.Context, orgID, userID string, projectIDs []string) *RestoreResult {
	results, succeeded := e.run(ctx, orgID, userID, projectIDs, restoreTransition)
	return &RestoreResult{
		Results: results,
		Summary: RestoreSummary{
			Total:    len(projectIDs),
			Restored: succeeded,
			Failed:   len(projectIDs) - succeeded,
		},
	}
}

// run waits for every item to settle; it never stops early.
func (e *Engine) run(ctx context.Context, orgID, userID string, projectIDs []string, t transition) ([]ItemResult, int) {
	start := e.now()
	results := make([]ItemResult, len(projectIDs))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, projectID := range projectIDs {
		g.Go(func() error {
			results[i] = e.process(ctx, orgID, userID, projectID, t)
			return nil
		})
	}
	_ = g.Wait()

	metrics := telemetry.GetMetrics()
	succeeded := 0
	for _, r := range results {
		metrics.RecordBulkItem(ctx, t.name, string(r.Status))
		if r.Status == t.done {
			succeeded++
		}
	}
	metrics.BulkDuration.Record(ctx, float64(time.Since(start).Milliseconds()))

	log.Info().
		Str("org_id", orgID).
		Str("user_id", userID).
		Str("operation", t.name).
		Int("total", len(projectIDs)).
		Int("succeeded", succeeded).
		Msg("Bulk operation completed")

	return results, succeeded
}

func (e *Engine) process(ctx context.Context, orgID, userID, projectID string, t transition) (result ItemResult) {
	result = ItemResult{ProjectID: projectID}

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailed
			result.Reason = fmt.Sprint(r)
			log.Error().Str("project_id", projectID).Str("panic", result.Reason).Msg("Bulk item panicked")
		}
	}()

	project, err := e.projects.Get(ctx, projectID)
	if err != nil {
		result.Status = StatusFailed
		if errors.Is(err, store.ErrProjectNotFound) {
			result.Reason = reasonNotFound
		} else {
			result.Reason = err.Error()
		}
		return result
	}

	if project.OrgID != orgID {
		result.Status = StatusFailed
		result.Reason = reasonAccessDenied
		return result
	}

	if project.Status != t.from {
		result.Status = StatusSkipped
		result.Reason = t.skipped
		return result
	}

	if err := e.projects.Update(ctx, projectID, t.patch(userID, e.now().UTC())); err != nil {
		log.Warn().Err(err).Str("project_id", projectID).Str("operation", t.name).Msg("Bulk item update failed")
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	result.Status = t.done
	return result
}

// GetSummary counts archived and active projects. The two counts are separate
// reads and are not mutually consistent under concurrent writes.
func (e *Engine) GetSummary(ctx context.Context, orgID string) (*Summary, error) {
	archived := models.ProjectStatusArchived
	archivedCount, err := e.projects.CountByOrg(ctx, orgID, &archived)
	if err != nil {
		return nil, fmt.Errorf("failed to count archived projects: %w", err)
	}

	active := models.ProjectStatusActive
	activeCount, err := e.projects.CountByOrg(ctx, orgID, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to count active projects: %w", err)
	}

	return &Summary{
		ArchivedProjects: archivedCount,
		ActiveProjects:   activeCount,
		TotalProjects:    archivedCount + activeCount,
	}, nil
}

// ListArchived returns archived projects, most recently updated first.
func (e *Engine) ListArchived(ctx context.Context, orgID string, page store.Page) ([]*models.Project, error) {
	projects, err := e.projects.ListArchived(ctx, orgID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived projects: %w", err)
	}
	return projects, nil
}

// CountArchived returns the number of archived projects.
func (e *Engine) CountArchived(ctx context.Context, orgID string) (int64, error) {
	archived := models.ProjectStatusArchived
	count, err := e.projects.CountByOrg(ctx, orgID, &archived)
	if err != nil {
		return 0, fmt.Errorf("failed to count archived projects: %w", err)
	}
	return count, nil
}

// IsOwnedByOrg reports whether projectID exists and belongs to orgID.
// A missing project is reported as false, not as an error.
func (e *Engine) IsOwnedByOrg(ctx context.Context, orgID, projectID string) (bool, error) {
	project, err := e.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get project: %w", err)
	}
	return project.OrgID == orgID, nil
}

// VerifyOwnership checks every project concurrently and fails Forbidden naming the
// first project, in input order, that is missing or belongs to another organization.
func (e *Engine) VerifyOwnership(ctx context.Context, orgID string, projectIDs []string) error {
	owned := make([]bool, len(projectIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, projectID := range projectIDs {
		g.Go(func() error {
			ok, err := e.IsOwnedByOrg(gctx, orgID, projectID)
			owned[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, ok := range owned {
		if !ok {
			return apperr.Forbiddenf("Project %s does not belong to this organization", projectIDs[i])
		}
	}
	return nil
}
