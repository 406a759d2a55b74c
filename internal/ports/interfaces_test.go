package ports_test

import (
	"testing"

	"github.com/target/mmk-event-browser/internal/mocks"
	authmocks "github.com/target/mmk-event-browser/internal/mocks/auth"
	viewmocks "github.com/target/mmk-event-browser/internal/mocks/view"
	"github.com/target/mmk-event-browser/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.EventSource = (*mocks.MockEventSource)(nil)
	var _ ports.CredentialStore = (*mocks.MockCredentialStore)(nil)
	var _ ports.CredentialProber = (*authmocks.StubProber)(nil)
	var _ ports.AuthExpiredHandler = (*authmocks.ExpiryRecorder)(nil)
	var _ ports.AuthExpiredHandler = ports.AuthExpiredFunc(nil)
	var _ ports.BrowserListener = (*viewmocks.RecordingListener)(nil)
	var _ ports.Presenter = (*viewmocks.RecordingPresenter)(nil)
}
