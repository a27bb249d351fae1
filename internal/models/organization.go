package models

import (
	"regexp"
	"strings"
	"time"
)

// DefaultPlanID is the billing plan assigned to new organizations.
const DefaultPlanID = "free"

// Organization represents an organization (tenant) in the system.
// Every member, project and task belongs to exactly one organization.
type Organization struct {
	OrgID         string         `json:"id"` // UUIDv7
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`          // derived from Name, unique
	BillingPlanID string         `json:"billingPlanId"` // FK to billing plans, may dangle
	Settings      map[string]any `json:"settings"`      // opaque
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphens      = regexp.MustCompile(`-+`)
)

// Slugify derives the URL-safe slug for an organization name.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(strings.TrimSpace(slug), "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
