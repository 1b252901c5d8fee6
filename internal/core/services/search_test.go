package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/markscan/internal/core/domain"
)

func seedRecord(t *testing.T, store *memory.RecordStore, id, name, regd string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), &domain.StudentRecord{
		ID: id,
		OCRResult: domain.OCRResult{
			Name:   name,
			TURegd: regd,
			Result: domain.StatusPassed,
		},
		CreatedAt: time.Now(),
	}))
}

func TestSearchService_Lookup_CaseAndWhitespaceInsensitive(t *testing.T) {
	store := memory.NewRecordStore()
	seedRecord(t, store, "r1", "Alice Sharma", "7-2-123-45-2018")
	sink := &recordingSink{}
	service := NewSearchService(store, sink)

	record, err := service.Lookup(context.Background(), "  alice SHARMA ", " 7-2-123-45-2018\t")
	require.NoError(t, err)
	assert.Equal(t, "r1", record.ID)
	assert.Equal(t, []domain.ActivityKind{domain.ActivitySearch}, sink.Kinds())
}

func TestSearchService_Lookup_NotFound(t *testing.T) {
	store := memory.NewRecordStore()
	seedRecord(t, store, "r1", "Alice Sharma", "7-2-123-45-2018")
	service := NewSearchService(store, nil)

	_, err := service.Lookup(context.Background(), "Alice Sharma", "7-2-123-45-2019")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Lookup(context.Background(), "Alice", "7-2-123-45-2018")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchService_Lookup_RequiresBothFields(t *testing.T) {
	service := NewSearchService(memory.NewRecordStore(), nil)

	_, err := service.Lookup(context.Background(), " ", "7-2-123-45-2018")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Lookup(context.Background(), "Alice Sharma", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchService_Lookup_SentinelsNeverMatch(t *testing.T) {
	service := NewSearchService(memory.NewRecordStore(), nil)

	_, err := service.Lookup(context.Background(), domain.NameNotFound, domain.RegistrationNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchService_Lookup_SentinelsIgnoreCase(t *testing.T) {
	// A store lookup would surface errStoreDown; the sentinel check must
	// answer first.
	service := NewSearchService(failingRecordStore{}, nil)

	tests := []struct {
		name   string
		tuRegd string
	}{
		{"name not found", "7-2-123-45-2018"},
		{"  NAME NOT FOUND ", "7-2-123-45-2018"},
		{"Alice Sharma", "registration not found"},
		{"Alice Sharma", "REGISTRATION NOT FOUND"},
	}
	for _, tt := range tests {
		_, err := service.Lookup(context.Background(), tt.name, tt.tuRegd)
		assert.ErrorIs(t, err, domain.ErrNotFound, "%q / %q", tt.name, tt.tuRegd)
		assert.NotErrorIs(t, err, errStoreDown)
	}
}

func TestSearchService_Lookup_StoreError(t *testing.T) {
	service := NewSearchService(failingRecordStore{}, nil)

	_, err := service.Lookup(context.Background(), "Alice Sharma", "7-2-123-45-2018")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSearchService_NilStore(t *testing.T) {
	service := NewSearchService(nil, nil)

	_, err := service.Lookup(context.Background(), "Alice Sharma", "7-2-123-45-2018")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
