package domain

import (
	"sort"
	"time"
)

// DefaultRoleName is the role every self-registered user receives. It must
// exist in the role collection before the service starts taking traffic.
const DefaultRoleName = "ROLE_USER"

// Role is static reference data used as a claim source.
type Role struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// RoleSet is a set of role names. Iteration order is never the map order:
// Names sorts lexicographically so that primary-role selection is stable
// across processes and storage backends.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from the given names, dropping duplicates.
func NewRoleSet(names ...string) RoleSet {
	s := make(RoleSet, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Add inserts a role name into the set.
func (s RoleSet) Add(name string) {
	if name != "" {
		s[name] = struct{}{}
	}
}

// Contains reports whether the set holds the given role name.
func (s RoleSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the role names sorted lexicographically.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Primary returns the first role in sorted order, or fallback when the set
// is empty.
func (s RoleSet) Primary(fallback string) string {
	names := s.Names()
	if len(names) == 0 {
		return fallback
	}
	return names[0]
}

// User models a registered account. Username and email are immutable after
// registration; roles are mutated only by administrative flows.
type User struct {
	ID           string    `json:"id,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        RoleSet   `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
