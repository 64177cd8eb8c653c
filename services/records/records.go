package records

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/db/kvdb"
	"github.com/meghashyamc/apotek/db/searchdb"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/realtime"
	"golang.org/x/sync/errgroup"
)

// Fixed width so that stored timestamps sort as strings.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Indexer is the part of the quick lookup index that record mutations touch.
type Indexer interface {
	IndexDocuments(documents []searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
}

type Service struct {
	logger  logger.Logger
	store   kvdb.DB
	indexer Indexer
	hub     realtime.Hub
	now     func() time.Time
}

func New(logger logger.Logger, store kvdb.DB, indexer Indexer, hub realtime.Hub) *Service {
	return &Service{
		logger:  logger,
		store:   store,
		indexer: indexer,
		hub:     hub,
		now:     time.Now,
	}
}

func (s *Service) Create(ctx context.Context, kind db.Kind, fields db.Record) (db.Record, error) {
	if err := validateName(fields); err != nil {
		return nil, err
	}

	record := fields.Clone()
	timestamp := s.now().UTC().Format(timestampFormat)
	record[db.FieldID] = uuid.New().String()
	record[db.FieldCreatedAt] = timestamp
	record[db.FieldUpdatedAt] = timestamp

	if err := s.put(kind, record); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, kind, record, realtime.OpCreated)

	return record, nil
}

func (s *Service) Get(_ context.Context, kind db.Kind, id string) (db.Record, error) {
	value, err := s.store.Get(string(kind), id)
	if err != nil {
		return nil, err
	}

	return decode(value)
}

// Update merges fields into the stored record. The id and creation time
// cannot be changed.
func (s *Service) Update(ctx context.Context, kind db.Kind, id string, fields db.Record) (db.Record, error) {
	record, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	for key, value := range fields {
		if key == db.FieldID || key == db.FieldCreatedAt {
			continue
		}
		record[key] = value
	}
	if err := validateName(record); err != nil {
		return nil, err
	}
	record[db.FieldUpdatedAt] = s.now().UTC().Format(timestampFormat)

	if err := s.put(kind, record); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, kind, record, realtime.OpUpdated)

	return record, nil
}

func (s *Service) Delete(ctx context.Context, kind db.Kind, id string) error {
	if _, err := s.store.Get(string(kind), id); err != nil {
		return err
	}

	if err := s.store.Delete(string(kind), id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", kind, id, err)
	}

	if err := s.indexer.DeleteDocuments([]string{id}); err != nil {
		s.logger.Error("failed to remove record from lookup index", "kind", kind, "id", id, "err", err.Error())
	}
	s.publish(ctx, realtime.Change{Kind: kind, ID: id, Op: realtime.OpDeleted, At: s.now().UTC()})

	return nil
}

// List returns every record of kind, oldest first.
func (s *Service) List(_ context.Context, kind db.Kind) ([]db.Record, error) {
	values, err := s.store.GetAll(string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	records := make([]db.Record, 0, len(values))
	for _, value := range values {
		record, err := decode(value)
		if err != nil {
			s.logger.Error("skipping undecodable record", "kind", kind, "err", err.Error())
			continue
		}
		records = append(records, record)
	}

	slices.SortStableFunc(records, func(a, b db.Record) int {
		createdA, _ := a.String(db.FieldCreatedAt)
		createdB, _ := b.String(db.FieldCreatedAt)
		if c := cmp.Compare(createdA, createdB); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})

	return records, nil
}

// Reindex rebuilds the lookup index from the store, one goroutine per kind.
func (s *Service) Reindex(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, kind := range db.Kinds {
		group.Go(func() error {
			records, err := s.List(ctx, kind)
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			documents := make([]searchdb.Document, 0, len(records))
			for _, record := range records {
				documents = append(documents, searchdb.NewDocument(kind, record))
			}
			if err := s.indexer.IndexDocuments(documents); err != nil {
				return fmt.Errorf("failed to index %s: %w", kind, err)
			}

			s.logger.Info("indexed records", "kind", kind, "count", len(documents))
			return nil
		})
	}

	return group.Wait()
}

func (s *Service) put(kind db.Kind, record db.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("failed to marshal record", "kind", kind, "err", err.Error())
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := s.store.Set(string(kind), record.ID(), string(data)); err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", kind, record.ID(), err)
	}

	return nil
}

// afterWrite keeps the lookup index and live views in step with the store.
// Failures are logged because the write itself already succeeded.
func (s *Service) afterWrite(ctx context.Context, kind db.Kind, record db.Record, op realtime.Op) {
	if err := s.indexer.IndexDocuments([]searchdb.Document{searchdb.NewDocument(kind, record)}); err != nil {
		s.logger.Error("failed to update lookup index", "kind", kind, "id", record.ID(), "err", err.Error())
	}
	s.publish(ctx, realtime.Change{Kind: kind, ID: record.ID(), Op: op, At: s.now().UTC()})
}

func (s *Service) publish(ctx context.Context, change realtime.Change) {
	if err := s.hub.Publish(ctx, change); err != nil {
		s.logger.Warn("failed to publish change", "kind", change.Kind, "id", change.ID, "err", err.Error())
	}
}

func validateName(record db.Record) error {
	name, ok := record[db.FieldName].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return &ValidationError{Field: db.FieldName, Reason: "a non-empty name is required"}
	}

	return nil
}

func decode(value string) (db.Record, error) {
	var record db.Record
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return record, nil
}
