package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/logging"
	"github.com/stacklok/translations-sync/internal/mask"
	"github.com/stacklok/translations-sync/internal/otel"
	"github.com/stacklok/translations-sync/internal/sources"
	"github.com/stacklok/translations-sync/internal/storage"
	"github.com/stacklok/translations-sync/internal/translations"
	"github.com/stacklok/translations-sync/internal/validators"
)

// TracerName is the name of the tracer used for sync spans
const TracerName = "github.com/stacklok/translations-sync/sync"

// Sync reason constants
const (
	// ReasonInitialSync means no snapshot was stored before this cycle
	ReasonInitialSync = "initial-sync"

	// ReasonSourceDataChanged means the masked content or its tags differ from the snapshot
	ReasonSourceDataChanged = "source-data-changed"

	// ReasonUpToDate means the snapshot already holds the fetched content
	ReasonUpToDate = "up-to-date"
)

// Stages of a sync cycle, reported on failure
const (
	StageFetch      = "fetch"
	StageValidation = "validation"
	StageStorage    = "storage"
)

// RefreshedMessage is logged once per cycle that rewrote the snapshot
const RefreshedMessage = "Translations were refreshed"

// DefaultMaxDocumentSize bounds the encoded size of a fetched document (10MB)
const DefaultMaxDocumentSize = 10 * 1024 * 1024

// Result contains the result of a successful sync operation
type Result struct {
	// Changed is true when the snapshot was rewritten
	Changed bool

	// Reason explains why the snapshot was or was not rewritten
	Reason string

	// Hash is the SHA256 of the masked content
	Hash string

	// LocaleCount is the number of locales in the masked content
	LocaleCount int

	// KeyCount is the number of translation values in the masked content
	KeyCount int
}

// Error represents a failed sync cycle
type Error struct {
	Err     error
	Message string
	Stage   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(stage string, err error, format string, args ...any) *Error {
	return &Error{
		Err:     err,
		Message: fmt.Sprintf(format, args...) + ": " + err.Error(),
		Stage:   stage,
	}
}

// Manager performs translation sync cycles
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/translations-sync/internal/sync Manager
type Manager interface {
	// PerformSync fetches, masks and compares the translations, and rewrites
	// the snapshot when it changed
	PerformSync(ctx context.Context, cfg *config.Config) (*Result, *Error)
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	sourceHandlerFactory sources.SourceHandlerFactory
	storage              storage.TranslationsStorage
	transformer          mask.Transformer
	maxDocumentSize      int
	tracer               trace.Tracer
}

// ManagerOption configures the default sync manager
type ManagerOption func(*defaultSyncManager)

// WithTransformer replaces the mask transformer
func WithTransformer(transformer mask.Transformer) ManagerOption {
	return func(m *defaultSyncManager) {
		m.transformer = transformer
	}
}

// WithMaxDocumentSize bounds the encoded size of fetched documents. 0 disables the check.
func WithMaxDocumentSize(size int) ManagerOption {
	return func(m *defaultSyncManager) {
		m.maxDocumentSize = size
	}
}

// WithTracerProvider enables tracing of sync cycles
func WithTracerProvider(provider trace.TracerProvider) ManagerOption {
	return func(m *defaultSyncManager) {
		if provider != nil {
			m.tracer = provider.Tracer(TracerName)
		}
	}
}

// NewDefaultSyncManager creates a new defaultSyncManager
func NewDefaultSyncManager(
	sourceHandlerFactory sources.SourceHandlerFactory,
	translationsStorage storage.TranslationsStorage,
	opts ...ManagerOption,
) Manager {
	m := &defaultSyncManager{
		sourceHandlerFactory: sourceHandlerFactory,
		storage:              translationsStorage,
		transformer:          mask.NewTransformer(),
		maxDocumentSize:      DefaultMaxDocumentSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerformSync performs one refresh cycle
func (s *defaultSyncManager) PerformSync(ctx context.Context, cfg *config.Config) (*Result, *Error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.PerformSync",
		trace.WithAttributes(otel.AttrSourceType.String(cfg.Source.Type)))
	defer span.End()
	ctx = logging.WithSpan(ctx)

	fetchResult, syncErr := s.fetchDocument(ctx, cfg)
	if syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	if syncErr := s.validateDocument(ctx, fetchResult.Document); syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	content, tags := s.applyMask(ctx, cfg, fetchResult.Document)

	result, syncErr := s.storeIfChanged(ctx, content, tags)
	if syncErr != nil {
		otel.RecordError(span, syncErr)
		return nil, syncErr
	}

	span.SetAttributes(
		attribute.Bool("sync.changed", result.Changed),
		otel.AttrKeyCount.Int(result.KeyCount),
	)
	return result, nil
}

// fetchDocument creates the source handler and fetches the translation document
func (s *defaultSyncManager) fetchDocument(ctx context.Context, cfg *config.Config) (*sources.FetchResult, *Error) {
	logger := logr.FromContextOrDiscard(ctx)

	handler, err := s.sourceHandlerFactory.CreateHandler(cfg.Source.Type)
	if err != nil {
		logger.Error(err, "Failed to create source handler")
		return nil, newError(StageFetch, err, "Failed to create source handler")
	}

	if err := handler.Validate(cfg); err != nil {
		logger.Error(err, "Source validation failed")
		return nil, newError(StageFetch, err, "Source validation failed")
	}

	fetchResult, err := handler.FetchDocument(ctx, cfg)
	if err != nil {
		logger.Error(err, "Fetch operation failed")
		return nil, newError(StageFetch, err, "Fetch failed")
	}

	logger.V(1).Info("Translations fetched from source",
		"keyCount", fetchResult.KeyCount,
		"format", fetchResult.Format,
		"hash", fetchResult.Hash)

	return fetchResult, nil
}

// validateDocument checks the document structure. Malformed locale codes are only reported.
func (s *defaultSyncManager) validateDocument(ctx context.Context, doc translations.Document) *Error {
	logger := logr.FromContextOrDiscard(ctx)

	if err := validators.ValidateDocument(doc, s.maxDocumentSize); err != nil {
		logger.Error(err, "Translation document validation failed")
		return newError(StageValidation, err, "Validation failed")
	}

	if invalid := validators.InvalidLocales(doc); len(invalid) > 0 {
		logger.Info("Document contains locale codes that are not BCP 47 language tags", "locales", invalid)
	}
	return nil
}

// applyMask projects the document with the configured tag filter
func (s *defaultSyncManager) applyMask(
	ctx context.Context, cfg *config.Config, doc translations.Document,
) (translations.Document, translations.Tags) {
	content := s.transformer.Transform(ctx, doc, cfg.SyncPolicy.FilterTags)
	return content, doc.Tags()
}

// storeIfChanged compares the masked content with the snapshot and replaces it when different
func (s *defaultSyncManager) storeIfChanged(
	ctx context.Context, content translations.Document, tags translations.Tags,
) (*Result, *Error) {
	logger := logr.FromContextOrDiscard(ctx)

	hash, err := content.Hash()
	if err != nil {
		return nil, newError(StageStorage, err, "Failed to hash translations")
	}

	result := &Result{
		Reason:      ReasonUpToDate,
		Hash:        hash,
		LocaleCount: len(content.Locales()),
		KeyCount:    content.CountKeys(),
	}

	snapshot, err := s.storage.GetSnapshot(ctx)
	switch {
	case errors.Is(err, storage.ErrSnapshotNotFound):
		snapshot = &storage.Snapshot{}
		result.Reason = ReasonInitialSync
	case err != nil:
		logger.Info("Failed to read translations snapshot, treating as empty", "error", err.Error())
		snapshot = &storage.Snapshot{}
		result.Reason = ReasonInitialSync
	}

	if translations.Equal(content, snapshot.Content) && translations.EqualTags(tags, snapshot.Tags) {
		logger.V(1).Info("Translations are up to date", "hash", hash)
		result.Reason = ReasonUpToDate
		return result, nil
	}

	// Clearing and writing happen in one replace of the file
	if err := s.storage.SetTranslations(ctx, content, tags); err != nil {
		logger.Error(err, "Failed to store translations")
		return nil, newError(StageStorage, err, "Storage failed")
	}

	if result.Reason != ReasonInitialSync {
		result.Reason = ReasonSourceDataChanged
	}
	result.Changed = true

	logger.Info(RefreshedMessage,
		"reason", result.Reason,
		"locales", result.LocaleCount,
		"keys", result.KeyCount,
		"hash", hash)

	return result, nil
}
