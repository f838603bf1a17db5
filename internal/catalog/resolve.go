package catalog

import (
	"context"
	"fmt"

	"github.com/desertthunder/wax/internal/shared"
)

// ResolveUnique returns a slug unique within the collection, derived from the
// normalized base slug. The base itself is preferred; on collision the suffixes
// -1, -2, -3, … are probed in order until a free candidate is found.
//
// The entity identified by excludeID is ignored during collision checks, so
// re-saving an entity with its own unchanged slug does not grow a suffix.
//
// An empty base is returned unchanged: the entity has no slug. The loop
// terminates because each probe is distinct and the collection is finite.
func ResolveUnique(ctx context.Context, store Store, collection, base, excludeID string) (string, error) {
	if base == "" {
		return "", nil
	}

	candidate := base
	for n := 1; ; n++ {
		matches, err := store.Find(ctx, collection, map[string]any{"slug": candidate})
		if err != nil {
			return "", fmt.Errorf("slug collision check failed: %w", err)
		}

		taken := false
		for _, m := range matches {
			if m.ID != excludeID {
				taken = true
				break
			}
		}

		if !taken {
			return candidate, nil
		}

		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// ResolveByIdentifier fetches the entity addressed by an inbound path segment,
// which may be a slug or a primary id. The slug lookup runs first; the id
// lookup is only tried when no entity owns a matching slug (see the package
// doc for why this ordering is load-bearing).
//
// Fails with [shared.ErrNotFound] when both lookups miss.
func ResolveByIdentifier(ctx context.Context, store Store, collection, identifier string) (Entity, error) {
	if identifier == "" {
		return Entity{}, fmt.Errorf("empty identifier: %w", shared.ErrNotFound)
	}

	matches, err := store.Find(ctx, collection, map[string]any{"slug": identifier})
	if err != nil {
		return Entity{}, fmt.Errorf("slug lookup failed: %w", err)
	}
	if len(matches) > 0 {
		return matches[0], nil
	}

	matches, err = store.Find(ctx, collection, map[string]any{"id": identifier})
	if err != nil {
		return Entity{}, fmt.Errorf("id lookup failed: %w", err)
	}
	if len(matches) > 0 {
		return matches[0], nil
	}

	return Entity{}, fmt.Errorf("no entity %q in %s: %w", identifier, collection, shared.ErrNotFound)
}
