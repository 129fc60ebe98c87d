package steward

import (
	"errors"
	"strings"
)

var (
	// ErrAccessDenied is returned by Enforce when an authorization check fails.
	ErrAccessDenied = errors.New("steward: access denied")

	// ErrPolicyNotFound is returned when a named policy cannot be found.
	ErrPolicyNotFound = errors.New("steward: policy not found")

	// ErrAssignmentNotFound is returned when a policy assignment cannot be found.
	ErrAssignmentNotFound = errors.New("steward: assignment not found")

	// ErrMembershipNotFound is returned when a membership cannot be found.
	ErrMembershipNotFound = errors.New("steward: membership not found")

	// ErrTemplateNotFound is returned when a role template cannot be found.
	ErrTemplateNotFound = errors.New("steward: template not found")

	// ErrResourceNotFound is returned when a hierarchy resource cannot be
	// found. Cross-tenant references surface as this error too, so callers
	// never learn whether a foreign resource exists.
	ErrResourceNotFound = errors.New("steward: resource not found")

	// ErrPolicyImmutable is returned when a tenant tries to modify a
	// system-wide policy.
	ErrPolicyImmutable = errors.New("steward: system policy cannot be modified")

	// ErrEmptyAssignment is returned when an assignment carries neither a
	// policy reference nor overrides.
	ErrEmptyAssignment = errors.New("steward: assignment needs a policy or overrides")

	// ErrInvalidActionLetter is returned by the strict mask parse for any
	// character outside r, c, u, d.
	ErrInvalidActionLetter = errors.New("steward: invalid action letter")

	// ErrInvalidScopeType is returned for a scope type outside the hierarchy.
	ErrInvalidScopeType = errors.New("steward: invalid scope type")
)

// FieldError is a single boundary validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level failures from a write API. Malformed
// permission strings are rejected with one entry per offending field rather
// than silently coerced.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Add appends a field failure.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "steward: validation failed"
	}
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "steward: validation failed: " + strings.Join(parts, "; ")
}
