package steward

import (
	"context"
	"log/slog"
)

// Materializer produces the grant set a request is evaluated against.
// Embedded grants (placed in the credential at issuance) win; otherwise the
// set is recomputed through the aggregator and cached by principal until an
// invalidation evicts it.
type Materializer struct {
	aggregator *Aggregator
	cache      Cache
	logger     *slog.Logger
}

// NewMaterializer creates a materializer. cache may be nil, in which case
// every non-embedded request recomputes.
func NewMaterializer(agg *Aggregator, cache Cache, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{aggregator: agg, cache: cache, logger: logger}
}

// Materialize resolves the grant set for a credential. Global
// administrators skip resolution entirely: the decision service allows them
// before grants are consulted. A store failure during recompute propagates;
// it is never folded into an allow or a deny.
func (m *Materializer) Materialize(ctx context.Context, cred Credential) (AccessGrantSet, error) {
	if cred.Principal.GlobalAdmin {
		return nil, nil
	}

	// Embedded mode: the token already carries the serialized set. No
	// store access; freshness is bounded by the token's issuance time.
	if cred.Grants != nil {
		return DecodeGrants(cred.Grants)
	}

	if m.cache != nil {
		if grants, ok := m.cache.Get(ctx, cred.Principal.ID); ok {
			return grants, nil
		}
	}

	grants, err := m.aggregator.GrantsForPrincipal(ctx, cred.Principal.ID)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		m.cache.Set(ctx, cred.Principal.ID, grants)
	}
	return grants, nil
}

// Attach materializes the credential's grants and stores them on the
// context. It runs at most once per request: a context that already carries
// grants is returned unchanged.
func (m *Materializer) Attach(ctx context.Context, cred Credential) (context.Context, error) {
	if _, ok := GrantsFromContext(ctx); ok {
		return ctx, nil
	}
	grants, err := m.Materialize(ctx, cred)
	if err != nil {
		return ctx, err
	}
	return WithGrants(WithPrincipal(ctx, cred.Principal), grants), nil
}
