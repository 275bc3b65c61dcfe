package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"finboard/internal/log"
)

// Store reads and writes JSON documents. It never surfaces errors: a missing
// or unreadable document is reported as absent, and a failed write is only
// logged, so callers must not assume a Set persisted.
type Store struct {
	backend Backend
	logger  *log.Logger
}

// NewStore builds a Store over backend.
func NewStore(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		backend: backend,
		logger:  logger.WithComponent(log.ComponentStorage),
	}
}

// Get decodes the document under key into dst, which must be a non-nil
// pointer, and reports whether it was present and well-formed. The document
// is decoded into a fresh value and copied into dst only on success, so dst
// is left untouched otherwise.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.backend.Read(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read stored value",
			log.FieldKey, key, log.FieldOperation, log.OpRead, log.FieldError, err)
		return false
	}
	if !ok {
		return false
	}
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		s.logger.ErrorContext(ctx, "Get needs a non-nil pointer",
			log.FieldKey, key, log.FieldOperation, log.OpRead, "type", fmt.Sprintf("%T", dst))
		return false
	}
	fresh := reflect.New(target.Type().Elem())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		s.logger.ErrorContext(ctx, "Stored value is not valid JSON, treating as absent",
			log.FieldKey, key, log.FieldOperation, log.OpRead, log.FieldError, err)
		return false
	}
	target.Elem().Set(fresh.Elem())
	return true
}

// Set encodes v as JSON and stores it under key, replacing any previous
// value.
func (s *Store) Set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode value",
			log.FieldKey, key, log.FieldOperation, log.OpUpdate, log.FieldError, err)
		return
	}
	if err := s.backend.Write(ctx, key, raw); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write value",
			log.FieldKey, key, log.FieldOperation, log.OpUpdate, log.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Value stored", log.FieldKey, key)
}

// Remove deletes key. Absent keys are fine.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove value",
			log.FieldKey, key, log.FieldOperation, log.OpDelete, log.FieldError, err)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
