package catalog

import (
	"context"
	"fmt"

	"github.com/desertthunder/wax/internal/shared"
)

// GuardDelete checks whether the parent entity may be deleted. It counts
// entities in childCollection whose fkField holds parentID and fails with
// [shared.ErrConflict], naming the blocking relationship, when any exist.
//
// The guard is advisory: the store does not enforce the reference, and the
// check is not atomic with a later delete unless the store implements
// [ConditionalDeleter]. Callers must run the guard before issuing the delete.
func GuardDelete(ctx context.Context, store Store, parentCollection, parentID, childCollection, fkField string) error {
	children, err := store.Find(ctx, childCollection, map[string]any{fkField: parentID})
	if err != nil {
		return fmt.Errorf("dependent lookup failed: %w", err)
	}

	if len(children) > 0 {
		return fmt.Errorf("%d %s still reference %s %q via %s: %w",
			len(children), childCollection, parentCollection, parentID, fkField, shared.ErrConflict)
	}

	return nil
}
