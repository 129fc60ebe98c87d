package steward

import "context"

// Cache stores materialized grant sets keyed by principal ID. Entries have
// no TTL: grants change only on explicit mutation, so an entry lives until
// an invalidation names its principal. Implementations must be safe for
// concurrent use; serving a slightly stale but previously-valid grant set
// during an in-flight invalidation is acceptable.
type Cache interface {
	// Get returns the cached grant set for a principal, if present.
	Get(ctx context.Context, principalID string) (AccessGrantSet, bool)

	// Set stores a grant set for a principal.
	Set(ctx context.Context, principalID string, grants AccessGrantSet)

	// Invalidate drops the cached entries for the named principals.
	// Unknown principals are ignored; invalidation is idempotent.
	Invalidate(ctx context.Context, principalIDs ...string)
}
