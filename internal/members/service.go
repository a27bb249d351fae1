// Package members manages organization membership: invitations, role changes and removal.
package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/notify"
	"github.com/wolfeidau/teamhub/internal/store"
	"github.com/wolfeidau/teamhub/internal/telemetry"
)

// PlanResolver resolves the billing plan of an organization.
type PlanResolver interface {
	ResolvePlan(ctx context.Context, orgID string) (*models.BillingPlan, error)
}

// InviteRequest is the payload of an invitation. An empty Role means MEMBER.
type InviteRequest struct {
	Email string
	Name  string
	Role  string
}

// Service implements member management for a single organization per call.
type Service struct {
	members store.MemberStore
	plans   PlanResolver
	events  notify.Emitter
	now     func() time.Time
}

// NewService creates a member service.
func NewService(members store.MemberStore, plans PlanResolver, events notify.Emitter) *Service {
	return &Service{
		members: members,
		plans:   plans,
		events:  events,
		now:     time.Now,
	}
}

// Invite adds a member to orgID.
//
// The member count check and the insert are separate store calls, so concurrent
// invites can overshoot the plan ceiling by the number of racing callers.
func (s *Service) Invite(ctx context.Context, orgID, invitedBy string, req InviteRequest) (*models.Member, error) {
	role := models.RoleMember
	if req.Role != "" {
		r, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, apperr.Validationf("Invalid role: %s", req.Role)
		}
		role = r
	}

	if role == models.RoleOwner {
		return nil, apperr.Forbiddenf("Cannot invite a member as OWNER")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, apperr.Validationf("Invalid email: %s", req.Email)
	}

	_, err := s.members.GetByEmail(ctx, orgID, email)
	switch {
	case err == nil:
		return nil, apperr.Conflictf("Member already exists in this organization")
	case !errors.Is(err, store.ErrMemberNotFound):
		return nil, fmt.Errorf("failed to look up member by email: %w", err)
	}

	plan, err := s.plans.ResolvePlan(ctx, orgID)
	if err != nil {
		return nil, err
	}

	count, err := s.members.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	if count >= int64(plan.MaxMembers) {
		telemetry.GetMetrics().RecordQuotaRejection(ctx, "members")
		return nil, apperr.Forbiddenf("Member limit reached for current billing plan. Max: %d", plan.MaxMembers)
	}

	memberID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate member ID: %w", err)
	}

	now := s.now().UTC()
	member := &models.Member{
		MemberID:  memberID.String(),
		OrgID:     orgID,
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		Role:      role,
		InvitedBy: invitedBy,
		InvitedAt: now,
		JoinedAt:  &now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, store.ErrMemberAlreadyExists) {
			return nil, apperr.Conflictf("Member already exists in this organization")
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	log.Info().
		Str("org_id", orgID).
		Str("member_id", member.MemberID).
		Str("role", string(role)).
		Msg("Member invited")

	s.events.Emit(notify.Event{
		Type:     notify.MemberInvited,
		OrgID:    orgID,
		ActorID:  invitedBy,
		MemberID: member.MemberID,
		Email:    member.Email,
	})

	return member, nil
}

// Get returns a member of orgID.
func (s *Service) Get(ctx context.Context, orgID, memberID string) (*models.Member, error) {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, apperr.NotFoundf("Member not found")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if member.OrgID != orgID {
		return nil, apperr.Forbiddenf("Access denied to this member")
	}

	return member, nil
}

// List returns a page of the organization's members.
func (s *Service) List(ctx context.Context, orgID string, page store.Page) ([]*models.Member, error) {
	members, err := s.members.ListByOrg(ctx, orgID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Count returns the number of members in the organization.
func (s *Service) Count(ctx context.Context, orgID string) (int64, error) {
	count, err := s.members.CountByOrg(ctx, orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// UpdateRole changes the role of memberID on behalf of actingUserID.
//
// The acting user's id is looked up directly as a member id. The organization
// creator's membership shares their user id; invited members are only able to
// act here when their user id was issued equal to their member id.
func (s *Service) UpdateRole(ctx context.Context, orgID, actingUserID, memberID, newRole string) (*models.Member, error) {
	role, err := models.ParseRole(newRole)
	if err != nil {
		return nil, apperr.Validationf("Invalid role: %s", newRole)
	}

	acting, err := s.Get(ctx, orgID, actingUserID)
	if err != nil {
		return nil, err
	}

	target, err := s.Get(ctx, orgID, memberID)
	if err != nil {
		return nil, err
	}

	if !auth.Outranks(acting.Role, target.Role) {
		return nil, apperr.Forbiddenf("Cannot modify a member with equal or higher role")
	}

	if !auth.Outranks(acting.Role, role) {
		return nil, apperr.Forbiddenf("Cannot assign a role equal to or higher than your own")
	}

	if role == models.RoleOwner {
		return nil, apperr.Forbiddenf("Cannot assign OWNER role")
	}

	if err := s.members.UpdateRole(ctx, memberID, role); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, apperr.NotFoundf("Member not found")
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	log.Info().
		Str("org_id", orgID).
		Str("member_id", memberID).
		Str("from", string(target.Role)).
		Str("to", string(role)).
		Msg("Member role updated")

	return s.Get(ctx, orgID, memberID)
}

// Remove soft-deletes memberID on behalf of actingUserID.
func (s *Service) Remove(ctx context.Context, orgID, actingUserID, memberID string) error {
	acting, err := s.Get(ctx, orgID, actingUserID)
	if err != nil {
		return err
	}

	target, err := s.Get(ctx, orgID, memberID)
	if err != nil {
		return err
	}

	if target.Role == models.RoleOwner {
		return apperr.Forbiddenf("Cannot remove the organization owner")
	}

	if !auth.Outranks(acting.Role, target.Role) {
		return apperr.Forbiddenf("Cannot remove a member with equal or higher role")
	}

	if err := s.members.SoftDelete(ctx, memberID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return apperr.NotFoundf("Member not found")
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	log.Info().Str("org_id", orgID).Str("member_id", memberID).Msg("Member removed")

	s.events.Emit(notify.Event{
		Type:     notify.MemberRemoved,
		OrgID:    orgID,
		ActorID:  actingUserID,
		MemberID: memberID,
		Email:    target.Email,
	})

	return nil
}
