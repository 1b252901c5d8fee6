// Package firestore provides a Cloud Firestore backed RecordStore.
//
// Each record is one document keyed by record ID. Lookup keys are stored
// alongside the result so identity queries are simple equality filters:
//
//	nameKey == ? AND regdKey == ?
//
// Listing by semester orders on createdAt and needs the composite index
// (semesterId ASC, createdAt DESC) in the target project.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/logger"
)

// DefaultCollection is used when no collection is configured.
const DefaultCollection = "student_records"

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is a Firestore backed driven.RecordStore.
type RecordStore struct {
	client     *firestore.Client
	collection string
	owned      bool
}

// NewRecordStore connects to projectID and stores records in collection.
func NewRecordStore(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*RecordStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: firestore project id must be set", domain.ErrInvalidInput)
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	s := NewRecordStoreWithClient(client, collection)
	s.owned = true
	return s, nil
}

// NewRecordStoreWithClient wraps an existing client. Close does not close it.
func NewRecordStoreWithClient(client *firestore.Client, collection string) *RecordStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &RecordStore{client: client, collection: collection}
}

// Close releases the client if the store created it.
func (s *RecordStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func (s *RecordStore) coll() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// Save stores or replaces a record by ID. A different record with the same
// identity makes it fail with domain.ErrAlreadyExists.
func (s *RecordStore) Save(ctx context.Context, record *domain.StudentRecord) error {
	if record == nil || record.ID == "" {
		return domain.ErrInvalidInput
	}
	doc := toDocument(record)
	ref := s.coll().Doc(record.ID)
	query := s.identityQuery(doc.NameKey, doc.RegdKey)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if snap.Ref.ID != record.ID {
				return domain.ErrAlreadyExists
			}
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(ctx context.Context, id string) (*domain.StudentRecord, error) {
	snap, err := s.coll().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return decode(snap)
}

// FindByIdentity retrieves the record with the given normalised identity.
func (s *RecordStore) FindByIdentity(ctx context.Context, name, tuRegd string) (*domain.StudentRecord, error) {
	nameKey, regdKey := domain.IdentityKey(name, tuRegd)
	iter := s.identityQuery(nameKey, regdKey).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return decode(snap)
}

func (s *RecordStore) identityQuery(nameKey, regdKey string) firestore.Query {
	return s.coll().
		Where("nameKey", "==", nameKey).
		Where("regdKey", "==", regdKey).
		Limit(1)
}

// List returns records newest first.
func (s *RecordStore) List(ctx context.Context, filter domain.RecordFilter) ([]domain.StudentRecord, error) {
	query := s.coll().Query
	if filter.SemesterID != "" {
		query = query.Where("semesterId", "==", filter.SemesterID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	records := []domain.StudentRecord{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing records: %w", err)
		}
		record, err := decode(snap)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	res, err := s.coll().NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("counting records: unexpected aggregation result %T", res["all"])
	}
	return int(v.GetIntegerValue()), nil
}

// Delete removes a record.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// DeleteBySemester removes every record of a semester.
func (s *RecordStore) DeleteBySemester(ctx context.Context, semesterID string) (int, error) {
	refs, err := s.coll().Where("semesterId", "==", semesterID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("querying semester records: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, snap := range refs {
		job, err := bw.Delete(snap.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("queueing delete: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			logger.Warn("firestore: delete failed: %v", err)
			continue
		}
		deleted++
	}
	if deleted < len(jobs) {
		return deleted, fmt.Errorf("deleted %d of %d semester records", deleted, len(jobs))
	}
	return deleted, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ==================== Document mapping ====================

// document is the stored shape of a record.
type document struct {
	Name        string    `firestore:"name"`
	TURegd      string    `firestore:"tuRegd"`
	NameKey     string    `firestore:"nameKey"`
	RegdKey     string    `firestore:"regdKey"`
	Result      string    `firestore:"result"`
	Grade       *string   `firestore:"grade"`
	Marks       *int64    `firestore:"marks"`
	TotalMarks  *int64    `firestore:"totalMarks"`
	Subject     *string   `firestore:"subject"`
	Program     *string   `firestore:"program"`
	Faculty     *string   `firestore:"faculty"`
	NeedsReview bool      `firestore:"needsReview"`
	ImagePath   string    `firestore:"imagePath"`
	UploadedBy  string    `firestore:"uploadedBy"`
	SemesterID  string    `firestore:"semesterId"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func toDocument(r *domain.StudentRecord) document {
	return document{
		Name:        r.Name,
		TURegd:      r.TURegd,
		NameKey:     r.NameKey(),
		RegdKey:     r.RegdKey(),
		Result:      string(r.Result),
		Grade:       r.Grade,
		Marks:       toInt64(r.Marks),
		TotalMarks:  toInt64(r.TotalMarks),
		Subject:     r.Subject,
		Program:     r.Program,
		Faculty:     r.Faculty,
		NeedsReview: r.NeedsReview,
		ImagePath:   r.ImagePath,
		UploadedBy:  r.UploadedBy,
		SemesterID:  r.SemesterID,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func fromDocument(id string, d document) *domain.StudentRecord {
	return &domain.StudentRecord{
		ID: id,
		OCRResult: domain.OCRResult{
			Name:        d.Name,
			TURegd:      d.TURegd,
			Result:      domain.ResultStatus(d.Result),
			Grade:       d.Grade,
			Marks:       fromInt64(d.Marks),
			TotalMarks:  fromInt64(d.TotalMarks),
			Subject:     d.Subject,
			Program:     d.Program,
			Faculty:     d.Faculty,
			NeedsReview: d.NeedsReview,
		},
		ImagePath:  d.ImagePath,
		UploadedBy: d.UploadedBy,
		SemesterID: d.SemesterID,
		CreatedAt:  d.CreatedAt,
	}
}

func decode(snap *firestore.DocumentSnapshot) (*domain.StudentRecord, error) {
	var d document
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", snap.Ref.ID, err)
	}
	return fromDocument(snap.Ref.ID, d), nil
}

func toInt64(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func fromInt64(v *int64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
