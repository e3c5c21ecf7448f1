/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"

	"torneos-admin/api/models"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	LoadSession(ctx context.Context) (string, models.User, error)
	SaveSession(ctx context.Context, token string, user models.User) error
	ClearSession(ctx context.Context) error
	StoreSnapshot(ctx context.Context, snap Snapshot) error
	FetchSnapshot(ctx context.Context, resource string) (Snapshot, error)
	Close(ctx context.Context) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)
