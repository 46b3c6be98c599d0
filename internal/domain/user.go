package domain

import (
	"sort"
	"strings"
	"time"
)

const RoleAdmin = "admin"

// User is the narrow view of a user record this service reads and writes.
// The role field is owned by the external user store; only Roles is ever
// mutated here.
type User struct {
	ID        string
	Identity  string
	Email     string
	Phone     string
	Roles     RoleSet
	UpdatedAt time.Time
}

// RoleSet is the set-of-tags form of the persisted comma-joined role
// string. Serialization to and from the string happens only at the
// repository edge.
type RoleSet map[string]struct{}

func NewRoleSet(tags ...string) RoleSet {
	s := make(RoleSet, len(tags))
	for _, tag := range tags {
		s.Add(tag)
	}
	return s
}

// ParseRoleSet splits a comma-joined role string, trimming blanks and
// dropping duplicates. Empty input yields an empty set.
func ParseRoleSet(raw string) RoleSet {
	s := make(RoleSet)
	for _, part := range strings.Split(raw, ",") {
		s.Add(part)
	}
	return s
}

func (s RoleSet) Has(tag string) bool {
	_, ok := s[strings.TrimSpace(tag)]
	return ok
}

// Add reports whether the set changed.
func (s RoleSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	if _, ok := s[tag]; ok {
		return false
	}
	s[tag] = struct{}{}
	return true
}

// Remove reports whether the set changed.
func (s RoleSet) Remove(tag string) bool {
	tag = strings.TrimSpace(tag)
	if _, ok := s[tag]; !ok {
		return false
	}
	delete(s, tag)
	return true
}

func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for tag := range s {
		out[tag] = struct{}{}
	}
	return out
}

// String returns the persisted form: sorted tags, comma-joined.
func (s RoleSet) String() string {
	if len(s) == 0 {
		return ""
	}
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}
