// Package ports defines interfaces (hexagonal ports) between the browser core and
// its collaborators. Implementations live in internal/adapters; orchestration in
// internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/domain/model"
	"github.com/target/mmk-event-browser/internal/query"
)

// ErrCredentialNotFound is returned by a CredentialStore holding no credential.
var ErrCredentialNotFound = errors.New("credential not found")

// EventSource is the event store as seen by the browser.
type EventSource interface {
	// ListEvents fetches one page for the given canonical parameters.
	ListEvents(ctx context.Context, params query.Params) (model.EventPage, error)

	// GetEvent fetches a single full record by identifier.
	GetEvent(ctx context.Context, id string) (model.EventDetail, error)
}

// CredentialStore persists the session-scoped credential.
type CredentialStore interface {
	Save(ctx context.Context, cred domainauth.Credential) error
	Get(ctx context.Context) (domainauth.Credential, error)
	Delete(ctx context.Context) error
}

// AuthExpiredHandler is told when the stored credential was rejected and cleared.
// The terminal front end answers by prompting for a fresh login.
type AuthExpiredHandler interface {
	OnAuthExpired(ctx context.Context)
}

// Presenter shows a full record in a modal-style overlay.
type Presenter interface {
	ShowDetail(title, body string)
}

// BrowserListener observes the rendered row collection and status line.
type BrowserListener interface {
	// RowsCleared is called when a reset empties the collection.
	RowsCleared()
	// RowsAppended is called with the newly appended rows and the new total.
	RowsAppended(rows []model.Row, total int)
	// StatusChanged carries the status line text.
	StatusChanged(status string)
}

// CredentialProber verifies a credential against the event store without storing it.
type CredentialProber interface {
	Probe(ctx context.Context, cred domainauth.Credential) error
}

// AuthExpiredFunc adapts a plain function to AuthExpiredHandler.
type AuthExpiredFunc func(ctx context.Context)

// OnAuthExpired calls f.
func (f AuthExpiredFunc) OnAuthExpired(ctx context.Context) { f(ctx) }
