// Package store keeps serialized lattices for the HTTP service.
//
// A stored [Entry] holds the JSON document written by pkg/io together with
// its identifier and expiry. Backends:
//   - memory: in-process map for development and tests
//   - file: one JSON file per entry for single-host deployments
//   - mongo: a MongoDB collection with a TTL index for shared deployments
//
// # Usage
//
//	st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: "mongodb://localhost:27017"})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	entry := store.NewEntry("toy", doc, store.DefaultTTL)
//	if err := st.Put(ctx, entry); err != nil {
//	    return err
//	}
//
//	entry, err = st.Get(ctx, entry.ID)
//	if err != nil {
//	    return err
//	}
//	if entry == nil {
//	    // missing or expired
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for identifiers that are not UUIDs. Rejecting them
// early keeps arbitrary strings out of file paths and queries.
var ErrInvalidID = errors.New("invalid lattice id")

// DefaultTTL is how long an uploaded lattice is kept.
const DefaultTTL = 24 * time.Hour

// Entry is one stored lattice document.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Document  []byte    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry wraps doc in an entry with a fresh random ID. A ttl of zero means
// the entry never expires.
func NewEntry(name string, doc []byte, ttl time.Duration) *Entry {
	now := time.Now().UTC()
	e := &Entry{
		ID:        uuid.NewString(),
		Name:      name,
		Document:  doc,
		CreatedAt: now,
	}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

// IsExpired reports whether the entry's TTL has passed.
func (e *Entry) IsExpired() bool {
	return e.expiredAt(time.Now())
}

func (e *Entry) expiredAt(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Store is the interface for lattice storage backends.
type Store interface {
	// Get retrieves an entry by ID.
	// Returns nil, nil if the entry doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Entry, error)

	// Put stores an entry, replacing any entry with the same ID.
	Put(ctx context.Context, entry *Entry) error

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired entries (may be a no-op where the backend
	// expires them itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ValidateID checks that id is a UUID.
func ValidateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
