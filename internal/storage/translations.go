package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/translations-sync/internal/mask"
	"github.com/stacklok/translations-sync/internal/translations"
)

const (
	// SnapshotKey is the store key holding the last synced translation content
	SnapshotKey = "data"

	// TagsKey is the store key holding the tag metadata of the snapshot
	TagsKey = "tags"
)

// ErrSnapshotNotFound is returned when no snapshot has been stored yet
var ErrSnapshotNotFound = errors.New("translations snapshot not found")

//go:generate mockgen -destination=mocks/mock_translations_storage.go -package=mocks -source=translations.go TranslationsStorage

// TranslationsStorage stores the translation snapshot
type TranslationsStorage interface {
	// GetSnapshot returns the stored content and tags, or ErrSnapshotNotFound
	GetSnapshot(ctx context.Context) (*Snapshot, error)

	// GetTranslations returns the stored content masked by filterTags, or ErrSnapshotNotFound
	GetTranslations(ctx context.Context, filterTags []string) (translations.Document, error)

	// SetTranslations replaces everything stored with the content and its tags.
	// Readers observe either the previous snapshot or the new one.
	SetTranslations(ctx context.Context, content translations.Document, tags translations.Tags) error

	// ClearTranslations removes the snapshot
	ClearTranslations(ctx context.Context) error

	// HasTranslations reports whether a snapshot is stored
	HasTranslations(ctx context.Context) (bool, error)
}

// Snapshot is the persisted result of the last sync that changed data
type Snapshot struct {
	Content translations.Document
	Tags    translations.Tags
}

// Document rebuilds a translation document carrying the snapshot tags
func (s *Snapshot) Document() translations.Document {
	doc := make(translations.Document, len(s.Content)+1)
	for k, v := range s.Content {
		doc[k] = v
	}
	if len(s.Tags) > 0 {
		doc[translations.TagsKey] = s.Tags
	}
	return doc
}

// kvTranslationsStorage implements TranslationsStorage on a KeyValueStore
type kvTranslationsStorage struct {
	store KeyValueStore
}

// NewTranslationsStorage creates a TranslationsStorage on top of the given store
func NewTranslationsStorage(store KeyValueStore) TranslationsStorage {
	return &kvTranslationsStorage{store: store}
}

// GetSnapshot returns the stored content and tags
func (s *kvTranslationsStorage) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	var content translations.Document
	var tags translations.Tags
	found, err := s.store.GetManyInto(ctx, map[string]any{
		SnapshotKey: &content,
		TagsKey:     &tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load translations snapshot: %w", err)
	}
	if !found[SnapshotKey] || content == nil {
		return nil, ErrSnapshotNotFound
	}

	return &Snapshot{Content: content, Tags: tags}, nil
}

// GetTranslations returns the stored content masked by filterTags
func (s *kvTranslationsStorage) GetTranslations(
	ctx context.Context, filterTags []string,
) (translations.Document, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return mask.Transform(snapshot.Document(), filterTags), nil
}

// SetTranslations replaces the stored mapping with the content and its tags
// in one write. Empty tags are not written.
func (s *kvTranslationsStorage) SetTranslations(
	ctx context.Context, content translations.Document, tags translations.Tags,
) error {
	if content == nil {
		content = translations.Document{}
	}
	values := map[string]any{SnapshotKey: content}
	if len(tags) > 0 {
		values[TagsKey] = tags
	}
	if err := s.store.Replace(ctx, values); err != nil {
		return fmt.Errorf("failed to store translations snapshot: %w", err)
	}
	return nil
}

// ClearTranslations removes every stored key
func (s *kvTranslationsStorage) ClearTranslations(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear translations: %w", err)
	}
	return nil
}

// HasTranslations reports whether a snapshot is stored
func (s *kvTranslationsStorage) HasTranslations(ctx context.Context) (bool, error) {
	return s.store.Has(ctx, SnapshotKey)
}
