package api

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/caresync/caresync-cli/httpclient"
)

// HealthRecord is one entry in the user's health history, e.g. an allergy,
// a medication or a diagnosed condition.
type HealthRecord struct {
	ID         string    `json:"id,omitempty"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// RecordsService is CRUD over the user's health records.
type RecordsService struct {
	client *httpclient.Client
}

// List returns all health records.
func (s *RecordsService) List(ctx context.Context) ([]HealthRecord, error) {
	var records []HealthRecord
	if err := s.client.Get(ctx, "/records", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns a single record by id.
func (s *RecordsService) Get(ctx context.Context, id string) (*HealthRecord, error) {
	if id == "" {
		return nil, errors.New("record id is required")
	}
	var record HealthRecord
	if err := s.client.Get(ctx, "/records/"+url.PathEscape(id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create stores a new record and returns it with its server-assigned id.
func (s *RecordsService) Create(ctx context.Context, record HealthRecord) (*HealthRecord, error) {
	var created HealthRecord
	if err := s.client.Post(ctx, "/records", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces an existing record.
func (s *RecordsService) Update(ctx context.Context, record HealthRecord) (*HealthRecord, error) {
	if record.ID == "" {
		return nil, errors.New("record id is required")
	}
	var updated HealthRecord
	if err := s.client.Put(ctx, "/records/"+url.PathEscape(record.ID), record, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a record by id.
func (s *RecordsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("record id is required")
	}
	return s.client.Delete(ctx, "/records/"+url.PathEscape(id))
}
