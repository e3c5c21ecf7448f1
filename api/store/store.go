/* store.go
 * Contains the store struct and NewStore function. The methods for this package are split into two files: sessions
 * and snapshots. Each of these files contain methods for interacting with that part of the database
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	SnapshotTTL time.Duration
	Collections struct {
		Sessions  *mongo.Collection
		Snapshots *mongo.Collection
	}
}

// DefaultSnapshotTTL is used when NewStore receives a non positive ttl
const DefaultSnapshotTTL = 10 * time.Minute

// Function for initialising Store. Opens the db connection and sets the collections
// Preconditions: Receives strings containing dbName and mongoURI, and the time a resource snapshot stays fresh
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string, snapshotTTL time.Duration) (*Store, error) {
	if dbName == "" || mongoURI == "" {
		return nil, fmt.Errorf("dbName and mongoURI cannot be empty")
	}
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	db := client.Database(dbName)

	s := &Store{Client: client, Database: db, SnapshotTTL: snapshotTTL}
	s.Collections.Sessions = db.Collection("sessions")
	s.Collections.Snapshots = db.Collection("snapshots")
	return s, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}
