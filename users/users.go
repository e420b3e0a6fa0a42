package users

import (
	"encoding/json"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/internal/utils"
)

// Roles follow the ROLE_<NAME> convention used by the backend
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleManager = "ROLE_MANAGER"
	RoleSales   = "ROLE_SALES"
	RoleUser    = "ROLE_USER"
)

// rolePrecedence orders roles from most to least privileged
var rolePrecedence = []string{RoleAdmin, RoleManager, RoleSales, RoleUser}

// Roles decodes from either a JSON array or a bare string ("ROLE_ADMIN" -> ["ROLE_ADMIN"])
type Roles []string

func (r *Roles) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = utils.ToStringSlice(raw)
	return nil
}

// UserProfile is the identity of the logged in user as the front-end sees it
type UserProfile struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Roles     Roles  `json:"roles"`
	Image     string `json:"image,omitempty"`
}

// UnmarshalJSON accepts the profile shapes the backend produces: "id" for "userId"
// and a singular "role" next to or instead of "roles".
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile
	var aux struct {
		plain
		ID   *int64 `json:"id"`
		Role Roles  `json:"role"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = UserProfile(aux.plain)
	if p.UserID == 0 && aux.ID != nil {
		p.UserID = *aux.ID
	}
	if len(p.Roles) == 0 && len(aux.Role) > 0 {
		p.Roles = aux.Role
	}
	return nil
}

// Normalized returns a copy whose Roles is never empty
func (p UserProfile) Normalized() UserProfile {
	p.Roles = NormalizeRoles(p.Roles)
	return p
}

// DisplayName prefers "First Last" and falls back to the username
func (p *UserProfile) DisplayName() string {
	if p == nil {
		return ""
	}
	if fullName := strings.TrimSpace(p.FirstName + " " + p.LastName); fullName != "" {
		return fullName
	}
	return p.Username
}

func (p *UserProfile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the profile holds at least one required role. An empty
// requirement means any authenticated user.
func (p *UserProfile) HasAnyRole(required []string) bool {
	if p == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// PrimaryRole returns the most privileged known role held
func (p *UserProfile) PrimaryRole() string {
	for _, role := range rolePrecedence {
		if p.HasRole(role) {
			return role
		}
	}
	return RoleUser
}

// NormalizeRoles trims, de-duplicates and upper-cases roles, adding the ROLE_ prefix
// when missing. An empty set becomes [ROLE_USER].
func NormalizeRoles(roles []string) []string {
	normalized := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if !strings.HasPrefix(role, "ROLE_") {
			role = "ROLE_" + role
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	if len(normalized) == 0 {
		normalized = append(normalized, RoleUser)
	}
	return normalized
}

// RoleLabel turns ROLE_SALES into "Sales"
func RoleLabel(role string) string {
	name := strings.TrimPrefix(role, "ROLE_")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
