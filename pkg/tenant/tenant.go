package tenant

import (
	"regexp"

	"github.com/google/uuid"
)

// Record maps a tenant identifier to its database connection URI. The URI is
// sensitive and must never be serialized into API responses or logs.
type Record struct {
	ID          string `yaml:"id" json:"id"`
	DatabaseURL string `yaml:"database_url" json:"-"`
}

// Principal is the authenticated identity attached to a request by the
// authentication layer before tenant resolution runs. TenantID may be empty
// for principals that are not bound to a tenant (platform admins).
type Principal struct {
	UserID   uuid.UUID
	TenantID string
}

// idPattern matches identifiers usable as subdomain labels: lowercase
// alphanumerics and inner hyphens, at most 63 characters.
var idPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidID reports whether id is an acceptable tenant identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
