// Package decisionlog defines the authorization decision audit record.
//
// Entries are internal audit data. The API deny response stays a generic
// forbidden; the recorded scope and action never reach the caller.
package decisionlog

import (
	"time"

	"github.com/xraph/steward/id"
)

// Entry is a single recorded authorization decision.
type Entry struct {
	ID          id.DecisionLogID `json:"id" db:"id"`
	TenantID    string           `json:"tenant_id" db:"tenant_id"`
	PrincipalID string           `json:"principal_id" db:"principal_id"`
	Action      string           `json:"action" db:"action"` // action letters
	Domain      string           `json:"domain" db:"domain"`
	ScopeType   string           `json:"scope_type" db:"scope_type"`
	ResourceID  string           `json:"resource_id" db:"resource_id"`
	Allowed     bool             `json:"allowed" db:"allowed"`
	EvalTimeNs  int64            `json:"eval_time_ns" db:"eval_time_ns"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	TenantID    string     `json:"tenant_id,omitempty"`
	PrincipalID string     `json:"principal_id,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	ScopeType   string     `json:"scope_type,omitempty"`
	ResourceID  string     `json:"resource_id,omitempty"`
	Allowed     *bool      `json:"allowed,omitempty"`
	After       *time.Time `json:"after,omitempty"`
	Before      *time.Time `json:"before,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}
