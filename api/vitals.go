package api

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/caresync/caresync-cli/httpclient"
)

// VitalSample is one measurement, from a connected device or manual entry.
// Type is a backend-defined kind such as "heart_rate", "blood_pressure" or
// "weight".
type VitalSample struct {
	ID         string    `json:"id,omitempty"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	MeasuredAt time.Time `json:"measuredAt"`
}

// VitalsService records and queries vitals measurements.
type VitalsService struct {
	client *httpclient.Client
}

// Record stores a measurement and returns it with its server-assigned id.
func (s *VitalsService) Record(ctx context.Context, sample VitalSample) (*VitalSample, error) {
	if sample.Type == "" {
		return nil, errors.New("sample type is required")
	}

	var recorded VitalSample
	if err := s.client.Post(ctx, "/vitals", sample, &recorded); err != nil {
		return nil, err
	}
	return &recorded, nil
}

// List returns measurements of the given type within [from, to). Zero times
// leave the corresponding bound open; an empty type returns all kinds.
func (s *VitalsService) List(ctx context.Context, vitalType string, from, to time.Time) ([]VitalSample, error) {
	query := url.Values{}
	if vitalType != "" {
		query.Set("type", vitalType)
	}
	if !from.IsZero() {
		query.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		query.Set("to", to.Format(time.RFC3339))
	}

	path := "/vitals"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var samples []VitalSample
	if err := s.client.Get(ctx, path, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// Latest returns the most recent measurement of the given type.
func (s *VitalsService) Latest(ctx context.Context, vitalType string) (*VitalSample, error) {
	if vitalType == "" {
		return nil, errors.New("vital type is required")
	}

	var sample VitalSample
	err := s.client.Get(ctx, "/vitals/latest?type="+url.QueryEscape(vitalType), &sample)
	if err != nil {
		return nil, err
	}
	return &sample, nil
}
