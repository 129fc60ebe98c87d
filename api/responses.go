package api

import "github.com/xraph/steward/template"

// CheckResponse is the response for an authorization check. A denial
// carries no detail about which scope or action bit was missing.
type CheckResponse struct {
	Allowed bool `json:"allowed" description:"Whether the request is allowed"`
}

// BatchCheckResponse contains results for multiple checks.
type BatchCheckResponse struct {
	Results []CheckResponse `json:"results" description:"Check results in order"`
}

// TemplateResponse is a template together with its declarations.
type TemplateResponse struct {
	*template.Template
	Items []*template.Item `json:"items" description:"Per-scope-level declarations"`
}
