// Package services orchestrates record operations across a store and the
// optional change feed.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"dairyledger/internal/amqp"
	"dairyledger/internal/core"
	"dairyledger/internal/store"
)

// ChangePublisher is the slice of the AMQP client the service needs.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, kind core.Kind, id, op string) error
}

// RecordService forwards CRUD calls to its store and publishes a change
// notification after each successful mutation. Publish failures are logged
// and never fail the request; the store already holds the truth.
type RecordService struct {
	kind   core.Kind
	store  store.Store
	events ChangePublisher
}

func NewRecordService(kind core.Kind, st store.Store, events ChangePublisher) *RecordService {
	return &RecordService{kind: kind, store: st, events: events}
}

// Kind returns the ledger kind this service manages.
func (s *RecordService) Kind() core.Kind {
	return s.kind
}

// Store exposes the underlying backend for capability checks (file backups).
func (s *RecordService) Store() store.Store {
	return s.store
}

func (s *RecordService) List(ctx context.Context) ([]core.Record, error) {
	return s.store.GetAll(ctx)
}

func (s *RecordService) Get(ctx context.Context, id string) (core.Record, error) {
	return s.store.GetByID(ctx, id)
}

func (s *RecordService) Create(ctx context.Context, d core.Draft) (core.Record, error) {
	r, err := s.store.Create(ctx, d)
	if err != nil {
		return core.Record{}, fmt.Errorf("create record: %w", err)
	}
	s.publish(ctx, r.ID, amqp.OpCreated)
	return r, nil
}

func (s *RecordService) Update(ctx context.Context, id string, p core.Patch) (core.Record, error) {
	r, err := s.store.Update(ctx, id, p)
	if err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, r.ID, amqp.OpUpdated)
	return r, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.OpDeleted)
	return nil
}

func (s *RecordService) ByCategory(ctx context.Context, c core.Category) ([]core.Record, error) {
	return s.store.GetByCategory(ctx, c)
}

func (s *RecordService) ByDateRange(ctx context.Context, start, end string) ([]core.Record, error) {
	return s.store.GetByDateRange(ctx, start, end)
}

// Report derives the aggregate report from the current collection.
func (s *RecordService) Report(ctx context.Context) (core.Report, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return core.Report{}, err
	}
	return core.BuildReport(records), nil
}

// Trend groups the current collection into period buckets.
func (s *RecordService) Trend(ctx context.Context, period core.PeriodKind) ([]core.PeriodBucket, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.ByPeriod(period, records), nil
}

// ReplaceAll swaps the whole collection, as spreadsheet upload does.
func (s *RecordService) ReplaceAll(ctx context.Context, records []core.Record) error {
	return s.store.Replace(ctx, records)
}

// ExportJSON serializes the full collection to a JSON blob for backups.
func (s *RecordService) ExportJSON(ctx context.Context) ([]byte, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(records, "", "  ")
}

// ImportJSON replaces the collection with whatever parses as a JSON array.
// There is deliberately no schema validation beyond that; unknown fields are
// dropped and type mismatches fail the parse as a whole.
func (s *RecordService) ImportJSON(ctx context.Context, data []byte) error {
	var records []core.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse import payload: %w", err)
	}
	return s.store.Replace(ctx, records)
}

func (s *RecordService) publish(ctx context.Context, id, op string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordChange(ctx, s.kind, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"error", err,
			"kind", s.kind,
			"record_id", id,
			"op", op)
	}
}
