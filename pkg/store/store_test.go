package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	e := NewEntry("toy", []byte(`{}`), time.Hour)
	if err := ValidateID(e.ID); err != nil {
		t.Errorf("ValidateID(%q) = %v, want nil", e.ID, err)
	}
	if e.IsExpired() {
		t.Error("IsExpired() = true for a fresh entry")
	}
	if got := e.ExpiresAt.Sub(e.CreatedAt); got != time.Hour {
		t.Errorf("ExpiresAt - CreatedAt = %v, want 1h", got)
	}

	forever := NewEntry("", nil, 0)
	if !forever.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero for ttl 0", forever.ExpiresAt)
	}
	if forever.IsExpired() {
		t.Error("IsExpired() = true for an entry without ttl")
	}
	if NewEntry("", nil, 0).ID == forever.ID {
		t.Error("NewEntry() returned the same ID twice")
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id   string
		want error
	}{
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil},
		{"", ErrInvalidID},
		{"../../etc/passwd", ErrInvalidID},
		{"not-a-uuid", ErrInvalidID},
	}
	for _, tt := range tests {
		if got := ValidateID(tt.id); got != tt.want {
			t.Errorf("ValidateID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	e := NewEntry("toy", []byte(`{"root":0}`), time.Hour)
	if got, err := s.Get(ctx, e.ID); err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v, want nil, nil", got, err)
	}
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.Get(ctx, e.ID)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v, want entry", got, err)
	}
	if got.ID != e.ID || got.Name != "toy" || !bytes.Equal(got.Document, e.Document) {
		t.Errorf("Get() = %+v, want %+v", got, e)
	}

	if _, err := s.Get(ctx, "bogus"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Get(bogus) error = %v, want ErrInvalidID", err)
	}
	if err := s.Put(ctx, &Entry{ID: "bogus"}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Put(bogus) error = %v, want ErrInvalidID", err)
	}

	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := s.Get(ctx, e.ID); got != nil {
		t.Errorf("Get() after Delete = %+v, want nil", got)
	}
	if err := s.Delete(ctx, e.ID); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}

	expired := NewEntry("old", []byte(`{}`), time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := s.Put(ctx, expired); err != nil {
		t.Fatalf("Put(expired) error = %v", err)
	}
	if got, err := s.Get(ctx, expired.ID); err != nil || got != nil {
		t.Errorf("Get(expired) = %v, %v, want nil, nil", got, err)
	}
	if err := s.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStoreContract(t, s)

	ctx := context.Background()
	e := NewEntry("x", []byte("abc"), time.Hour)
	_ = s.Put(ctx, e)
	e.Document[0] = 'z'
	got, _ := s.Get(ctx, e.ID)
	if string(got.Document) != "abc" {
		t.Errorf("Document = %q, want stored copy %q", got.Document, "abc")
	}

	now := time.Now()
	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after Cleanup = %d, want 0", s.Len())
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
	testStoreContract(t, s)

	ctx := context.Background()
	old := NewEntry("old", []byte(`{}`), time.Hour)
	old.ExpiresAt = time.Now().Add(-time.Hour)
	if err := s.Put(ctx, old); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, old.ID+".json")); !os.IsNotExist(err) {
		t.Errorf("expired entry file still present: %v", err)
	}
}

func TestMongoEntryConversion(t *testing.T) {
	e := NewEntry("toy", []byte(`{}`), time.Hour)
	back := fromMongo(toMongo(e))
	if back.ID != e.ID || !back.ExpiresAt.Equal(e.ExpiresAt) || !back.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("fromMongo(toMongo()) = %+v, want %+v", back, e)
	}

	forever := NewEntry("", nil, 0)
	if doc := toMongo(forever); doc.ExpiresAt != nil {
		t.Errorf("toMongo().ExpiresAt = %v, want nil for an entry without ttl", doc.ExpiresAt)
	}
}

func TestNewMongoStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err := NewMongoStore(ctx, MongoConfig{URI: "mongodb://127.0.0.1:1/?connectTimeoutMS=100&serverSelectionTimeoutMS=200"})
	if err == nil {
		t.Fatal("NewMongoStore() error = nil, want connection failure")
	}
}
