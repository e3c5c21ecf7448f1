/* models.go
 * This file contains the structs stored in the db
 */

package store

import (
	"time"

	"torneos-admin/api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionDoc is the persisted admin session. There is a single document keyed by SessionKey
type SessionDoc struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Key       string             `bson:"key"`
	Token     string             `bson:"token"`
	User      models.User        `bson:"user"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// SnapshotDoc is the last fetched list of a resource. Items holds the list in its json form so the store does not
// depend on the entity types
type SnapshotDoc struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Resource  string             `bson:"resource"`
	Items     string             `bson:"items"`
	Total     int                `bson:"total"`
	Page      int                `bson:"page"`
	Limit     int                `bson:"limit"`
	FetchedAt time.Time          `bson:"fetched_at"`
	TTL       int64              `bson:"ttl"` // unix seconds after which the snapshot is stale
}

// Expired reports whether the snapshot is stale at now
func (d SnapshotDoc) Expired(now time.Time) bool {
	return d.TTL < now.Unix()
}
