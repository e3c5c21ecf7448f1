/* sessions.go
 * Contains the methods for interacting with the sessions collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"torneos-admin/api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionKey identifies the admin session document
const SessionKey = "admin"

// ErrNoSession is returned by LoadSession when nothing has been saved
var ErrNoSession = errors.New("no stored session")

// Function used to load the persisted session
// Preconditions: Receives context
// Postconditions: Returns the token and user, ErrNoSession if none is stored, or another error if the lookup failed
func (s *Store) LoadSession(ctx context.Context) (string, models.User, error) {
	var doc SessionDoc
	err := s.Collections.Sessions.FindOne(ctx, bson.M{"key": SessionKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", models.User{}, ErrNoSession
		}
		return "", models.User{}, fmt.Errorf("error fetching session from db: %w", err)
	}
	return doc.Token, doc.User, nil
}

// Function used to persist the session
// Preconditions: Receives context, the auth token and the logged in user
// Postconditions: Inserts or updates the session document, returns error if the operation was unsuccessful
func (s *Store) SaveSession(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	filter := bson.M{"key": SessionKey}
	var raw bson.M
	err := s.Collections.Sessions.FindOne(ctx, filter).Decode(&raw)
	notFound := errors.Is(err, mongo.ErrNoDocuments)
	if err != nil && !notFound {
		return fmt.Errorf("lookup for existing session failed: %w", err)
	}

	doc := SessionDoc{Key: SessionKey, Token: token, User: user, UpdatedAt: time.Now().UTC()}
	if notFound {
		if _, err := s.Collections.Sessions.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	}
	if _, err := s.Collections.Sessions.UpdateOne(ctx, filter, bson.M{"$set": doc}); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// ClearSession removes the persisted session. Clearing when nothing is stored is not an error
func (s *Store) ClearSession(ctx context.Context) error {
	if _, err := s.Collections.Sessions.DeleteMany(ctx, bson.M{"key": SessionKey}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
