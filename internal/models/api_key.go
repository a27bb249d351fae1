package models

import "time"

// APIKey is a long-lived credential scoped to one organization.
type APIKey struct {
	KeyID      string     `json:"id"` // UUIDv7
	OrgID      string     `json:"organizationId"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"` // first characters of the secret, for display
	KeyHash    string     `json:"-"`      // hex SHA256 of the secret
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// IsRevoked returns true if the key can no longer authenticate.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}
