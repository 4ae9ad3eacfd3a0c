package api

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/caresync/caresync-cli/httpclient"
)

// Appointment is a telehealth booking with a provider.
type Appointment struct {
	ID         string    `json:"id,omitempty"`
	ProviderID string    `json:"providerId"`
	Provider   string    `json:"providerName,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	Status     string    `json:"status,omitempty"`
}

// Slot is a bookable time on a provider's calendar.
type Slot struct {
	ProviderID string    `json:"providerId"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
}

// AppointmentsService books and manages telehealth appointments.
type AppointmentsService struct {
	client *httpclient.Client
}

// List returns the user's appointments, optionally limited to the window
// [from, to). Zero times leave the corresponding bound open.
func (s *AppointmentsService) List(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		query.Set("to", to.Format(time.RFC3339))
	}

	path := "/appointments"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var appointments []Appointment
	if err := s.client.Get(ctx, path, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// Slots returns a provider's open slots for the day containing day.
func (s *AppointmentsService) Slots(ctx context.Context, providerID string, day time.Time) ([]Slot, error) {
	if providerID == "" {
		return nil, errors.New("provider id is required")
	}

	query := url.Values{}
	query.Set("providerId", providerID)
	query.Set("date", day.Format("2006-01-02"))

	var slots []Slot
	if err := s.client.Get(ctx, "/appointments/slots?"+query.Encode(), &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Book creates an appointment and returns it with its server-assigned id
// and status.
func (s *AppointmentsService) Book(ctx context.Context, appointment Appointment) (*Appointment, error) {
	if appointment.ProviderID == "" {
		return nil, errors.New("provider id is required")
	}
	if appointment.StartsAt.IsZero() {
		return nil, errors.New("start time is required")
	}

	var booked Appointment
	if err := s.client.Post(ctx, "/appointments", appointment, &booked); err != nil {
		return nil, err
	}
	return &booked, nil
}

// Cancel cancels an appointment by id.
func (s *AppointmentsService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("appointment id is required")
	}
	return s.client.Delete(ctx, "/appointments/"+url.PathEscape(id))
}
