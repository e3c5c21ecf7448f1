/* snapshots.go
 * Contains the methods for interacting with the snapshots collection. A snapshot is the last list fetched for a
 * resource, used to show data immediately after a restart while the first fetch is in flight
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNoSnapshot      = errors.New("no snapshot stored")
	ErrSnapshotExpired = errors.New("snapshot expired")
)

// Snapshot is a resource list as handed over by the resource slices
type Snapshot struct {
	Resource  string
	Items     []byte // json array
	Total     int
	Page      int
	Limit     int
	FetchedAt time.Time
}

// Function to store the snapshot of a resource
// Preconditions: Receives context and the snapshot, its Resource cannot be empty
// Postconditions: Inserts or updates the snapshot document with a fresh TTL, returns error if the operation was unsuccessful
func (s *Store) StoreSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.Resource == "" {
		return fmt.Errorf("snapshot resource cannot be empty")
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}

	filter := bson.M{"resource": snap.Resource}
	var raw bson.M
	err := s.Collections.Snapshots.FindOne(ctx, filter).Decode(&raw)
	notFound := errors.Is(err, mongo.ErrNoDocuments)
	if err != nil && !notFound {
		return fmt.Errorf("lookup for existing snapshot failed: %w", err)
	}

	doc := SnapshotDoc{
		Resource:  snap.Resource,
		Items:     string(snap.Items),
		Total:     snap.Total,
		Page:      snap.Page,
		Limit:     snap.Limit,
		FetchedAt: snap.FetchedAt,
		TTL:       DetermineTTL(snap.FetchedAt, s.SnapshotTTL),
	}

	if notFound {
		if _, err := s.Collections.Snapshots.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("failed to insert %s snapshot: %w", snap.Resource, err)
		}
		return nil
	}
	if _, err := s.Collections.Snapshots.UpdateOne(ctx, filter, bson.M{"$set": doc}); err != nil {
		return fmt.Errorf("failed to update %s snapshot: %w", snap.Resource, err)
	}
	return nil
}

// Function used to fetch the snapshot of a resource
// Preconditions: Receives context and the resource name
// Postconditions: Returns the snapshot, ErrNoSnapshot when none is stored, or ErrSnapshotExpired along with the stale
// snapshot when its TTL has passed
func (s *Store) FetchSnapshot(ctx context.Context, resource string) (Snapshot, error) {
	var doc SnapshotDoc
	err := s.Collections.Snapshots.FindOne(ctx, bson.M{"resource": resource}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("error fetching %s snapshot from db: %w", resource, err)
	}

	snap := Snapshot{
		Resource:  doc.Resource,
		Items:     []byte(doc.Items),
		Total:     doc.Total,
		Page:      doc.Page,
		Limit:     doc.Limit,
		FetchedAt: doc.FetchedAt,
	}
	if doc.Expired(time.Now()) {
		return snap, ErrSnapshotExpired
	}
	return snap, nil
}

// DetermineTTL returns the unix time at which a snapshot fetched at fetchedAt becomes stale
func DetermineTTL(fetchedAt time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return fetchedAt.Add(ttl).Unix()
}
