// Package mocks provides mock implementations for testing the event browser.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	src := mocks.NewMockEventSource(ctrl)
//	src.EXPECT().ListEvents(gomock.Any(), gomock.Any()).Return(page, nil)
package mocks

// Generate mock for EventSource interface from internal/ports package.
// This creates MockEventSource with methods for all EventSource interface methods:
// ListEvents, GetEvent
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_source_mock.go github.com/target/mmk-event-browser/internal/ports EventSource

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods for all CredentialStore interface methods:
// Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/target/mmk-event-browser/internal/ports CredentialStore
