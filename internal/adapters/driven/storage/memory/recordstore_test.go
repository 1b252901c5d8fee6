package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

func newRecord(id, name, regd, semester string, createdAt time.Time) *domain.StudentRecord {
	return &domain.StudentRecord{
		ID:         id,
		OCRResult:  domain.OCRResult{Name: name, TURegd: regd, Result: domain.StatusPassed},
		SemesterID: semester,
		CreatedAt:  createdAt,
	}
}

func TestRecordStore_SaveGetFind(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newRecord("r1", "Alice Sharma", "7-2-123-45-2018", "", time.Now())))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Sharma", got.Name)

	found, err := store.FindByIdentity(ctx, " alice SHARMA", "7-2-123-45-2018")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.ID)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.FindByIdentity(ctx, "Alice Sharma", "other")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_ReturnsCopies(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("r1", "Alice", "1", "", time.Now())))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	got.Name = "Mallory"

	again, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}

func TestRecordStore_IdentityIsUnique(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newRecord("r1", "Alice", "1", "", time.Now())))
	assert.ErrorIs(t, store.Save(ctx, newRecord("r2", "ALICE", "1", "", time.Now())), domain.ErrAlreadyExists)
	assert.NoError(t, store.Save(ctx, newRecord("r1", "ALICE", "1", "", time.Now())))
}

func TestRecordStore_ListFilterAndPaging(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		semester := "odd"
		if i%2 == 0 {
			semester = "even"
		}
		require.NoError(t, store.Save(ctx, newRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("S%d", i), "x", semester, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := store.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "r3", all[0].ID)

	page, err := store.List(ctx, domain.RecordFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "r2", page[0].ID)

	past, err := store.List(ctx, domain.RecordFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)

	even, err := store.List(ctx, domain.RecordFilter{SemesterID: "even"})
	require.NoError(t, err)
	assert.Len(t, even, 2)
}

func TestRecordStore_DeleteAndCount(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("r1", "A", "1", "fall", time.Now())))
	require.NoError(t, store.Save(ctx, newRecord("r2", "B", "2", "fall", time.Now())))
	require.NoError(t, store.Save(ctx, newRecord("r3", "C", "3", "spring", time.Now())))

	require.NoError(t, store.Delete(ctx, "r3"))
	assert.ErrorIs(t, store.Delete(ctx, "r3"), domain.ErrNotFound)

	removed, err := store.DeleteBySemester(ctx, "fall")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
