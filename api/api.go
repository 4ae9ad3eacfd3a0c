// Package api exposes the CareSync backend as typed services: account and
// session management, health records, telehealth appointments and vitals.
// Every call goes through the authenticated httpclient, so an expired
// access token is refreshed and the call replayed transparently.
package api

import (
	"github.com/caresync/caresync-cli/credstore"
	"github.com/caresync/caresync-cli/httpclient"
)

// API bundles the backend services around a shared client.
type API struct {
	Auth         *AuthService
	Records      *RecordsService
	Appointments *AppointmentsService
	Vitals       *VitalsService
}

// New creates the service bundle.
func New(client *httpclient.Client, store *credstore.Store) *API {
	return &API{
		Auth:         &AuthService{client: client, store: store},
		Records:      &RecordsService{client: client},
		Appointments: &AppointmentsService{client: client},
		Vitals:       &VitalsService{client: client},
	}
}
