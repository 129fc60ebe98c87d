package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	PrincipalID string `json:"principal_id" description:"Authenticated principal identifier"`
	GlobalAdmin bool   `json:"global_admin,omitempty" description:"Platform operator flag"`
	Action      string `json:"action" description:"Required action letters (subset of rcud)"`
	Domain      string `json:"domain" description:"Permission domain key (l, m, f, t, o, p)"`
	ScopeType   string `json:"scope_type" description:"Resource hierarchy level (ORG, PROPERTY, UNIT, ASSET)"`
	ResourceID  string `json:"resource_id" description:"Resource identifier"`
	TenantID    string `json:"tenant_id" description:"Tenant (organization) the check runs within"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of authorization checks"`
}

// ──────────────────────────────────────────────────
// Policy requests
// ──────────────────────────────────────────────────

// CreatePolicyRequest is the body for creating a named policy.
type CreatePolicyRequest struct {
	Name        string            `json:"name" description:"Policy name, unique within the tenant"`
	Description string            `json:"description,omitempty" description:"Human-readable description"`
	Permissions map[string]string `json:"permissions" description:"Domain key to action letters (e.g. {\"l\": \"rcud\"})"`
	System      bool              `json:"system,omitempty" description:"Create as a system-wide policy (platform operators only)"`
}

// UpdatePolicyRequest is the body for updating a policy.
type UpdatePolicyRequest struct {
	Name        string            `json:"name,omitempty" description:"Policy name"`
	Description string            `json:"description,omitempty" description:"Human-readable description"`
	Permissions map[string]string `json:"permissions,omitempty" description:"Replacement permission map"`
}

// GetPolicyRequest is the path parameter for getting a policy.
type GetPolicyRequest struct {
	PolicyID string `path:"policyId" description:"Policy ID"`
}

// ListPoliciesRequest holds query parameters for listing policies.
type ListPoliciesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Assignment requests
// ──────────────────────────────────────────────────

// CreateAssignmentRequest is the body for assigning permissions to a
// membership at one resource. At least one of policy_id and overrides is
// required; non-empty overrides fully replace the policy's permissions.
type CreateAssignmentRequest struct {
	MembershipID string            `json:"membership_id" description:"Membership receiving the assignment"`
	ScopeType    string            `json:"scope_type" description:"Resource hierarchy level"`
	ResourceID   string            `json:"resource_id" description:"Resource identifier"`
	PolicyID     string            `json:"policy_id,omitempty" description:"Referenced policy ID"`
	Overrides    map[string]string `json:"overrides,omitempty" description:"Per-assignment permission overrides"`
}

// GetAssignmentRequest is the path parameter for getting an assignment.
type GetAssignmentRequest struct {
	AssignmentID string `path:"assignmentId" description:"Assignment ID"`
}

// ListAssignmentsRequest holds query parameters.
type ListAssignmentsRequest struct {
	MembershipID string `query:"membership_id" description:"Filter by membership ID"`
	PolicyID     string `query:"policy_id" description:"Filter by policy ID"`
	ScopeType    string `query:"scope_type" description:"Filter by hierarchy level"`
	ResourceID   string `query:"resource_id" description:"Filter by resource ID"`
	Limit        int    `query:"limit" description:"Maximum results"`
	Offset       int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Membership requests
// ──────────────────────────────────────────────────

// CreateMembershipRequest is the body for creating a membership. Omitting
// principal_id creates a pending invitation.
type CreateMembershipRequest struct {
	PrincipalID string `json:"principal_id,omitempty" description:"Principal to link (empty for a pending invite)"`
	TemplateID  string `json:"template_id,omitempty" description:"Role template to attach"`
	InviteEmail string `json:"invite_email,omitempty" description:"Invitee email for pending memberships"`
}

// AcceptInviteRequest links a principal to a pending membership.
type AcceptInviteRequest struct {
	PrincipalID string `json:"principal_id" description:"Principal accepting the invite"`
}

// GetMembershipRequest is the path parameter for getting a membership.
type GetMembershipRequest struct {
	MembershipID string `path:"membershipId" description:"Membership ID"`
}

// ListMembershipsRequest holds query parameters.
type ListMembershipsRequest struct {
	PrincipalID string `query:"principal_id" description:"Filter by principal ID"`
	Pending     string `query:"pending" description:"Filter by invite status (true/false)"`
	Limit       int    `query:"limit" description:"Maximum results"`
	Offset      int    `query:"offset" description:"Results to skip"`
}

// CreateBindingRequest anchors a membership to one concrete resource.
type CreateBindingRequest struct {
	ScopeType string `json:"scope_type" description:"Resource hierarchy level (PROPERTY or UNIT)"`
	ScopeID   string `json:"scope_id" description:"Resource identifier"`
}

// ──────────────────────────────────────────────────
// Template requests
// ──────────────────────────────────────────────────

// TemplateItemInput is one per-scope-level declaration within a template.
type TemplateItemInput struct {
	ScopeType   string            `json:"scope_type" description:"Hierarchy level the item declares permissions at"`
	Permissions map[string]string `json:"permissions" description:"Domain key to action letters"`
}

// CreateTemplateRequest is the body for creating a role template.
type CreateTemplateRequest struct {
	Name        string              `json:"name" description:"Template name"`
	Description string              `json:"description,omitempty" description:"Human-readable description"`
	Items       []TemplateItemInput `json:"items,omitempty" description:"Initial declarations"`
}

// UpdateTemplateRequest is the body for updating a template's metadata.
type UpdateTemplateRequest struct {
	Name        string `json:"name,omitempty" description:"Template name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// SetTemplateItemsRequest wholesale replaces a template's declarations.
type SetTemplateItemsRequest struct {
	Items []TemplateItemInput `json:"items" description:"Replacement declarations"`
}

// GetTemplateRequest is the path parameter for getting a template.
type GetTemplateRequest struct {
	TemplateID string `path:"templateId" description:"Template ID"`
}

// ListTemplatesRequest holds query parameters.
type ListTemplatesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Decision log requests
// ──────────────────────────────────────────────────

// ListDecisionLogsRequest holds query parameters for querying decision logs.
type ListDecisionLogsRequest struct {
	PrincipalID string `query:"principal_id" description:"Filter by principal ID"`
	Domain      string `query:"domain" description:"Filter by domain key"`
	ScopeType   string `query:"scope_type" description:"Filter by hierarchy level"`
	ResourceID  string `query:"resource_id" description:"Filter by resource ID"`
	Allowed     string `query:"allowed" description:"Filter by outcome (true/false)"`
	After       string `query:"after" description:"After timestamp (RFC3339)"`
	Before      string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit       int    `query:"limit" description:"Maximum results"`
	Offset      int    `query:"offset" description:"Results to skip"`
}
