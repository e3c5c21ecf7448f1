/* test_helpers.go
 * Contains test helper functions for store package tests
 */

package store

import (
	"context"
	"os"
	"testing"
	"time"
)

// NewTestStore connects to the database named by MONGO_TEST_URI and drops it when the test ends. Tests calling it are
// skipped when the variable is not set
func NewTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	mongoURI := os.Getenv("MONGO_TEST_URI")
	if mongoURI == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := NewStore(ctx, "test_torneos_admin", mongoURI, ttl)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := s.Client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}

	t.Cleanup(func() {
		s.Database.Drop(context.Background())
		s.Close(context.Background())
	})
	return s
}
