package testutil

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-event-browser/internal/domain/model"
)

func getPage(t *testing.T, f *FakeEventStore, rawQuery string) model.EventPage {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.URL()+"/api/events?"+rawQuery, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page model.EventPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func TestFakeEventStore_CursorPaging(t *testing.T) {
	f := NewFakeEventStore(t, "", Events("ev", "alice", 5))

	first := getPage(t, f, "limit=2")
	assert.Equal(t, []string{"ev-0000", "ev-0001"}, IDs(first.Data))
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second := getPage(t, f, "limit=2&cursor="+first.NextCursor)
	assert.Equal(t, []string{"ev-0002", "ev-0003"}, IDs(second.Data))

	last := getPage(t, f, "limit=2&cursor="+second.NextCursor)
	assert.Equal(t, []string{"ev-0004"}, IDs(last.Data))
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)
}

func TestFakeEventStore_FiltersAndAuth(t *testing.T) {
	events := append(Events("a", "alice", 2), Events("b", "bob", 3)...)
	f := NewFakeEventStore(t, "tok", events)

	resp, err := http.Get(f.URL() + "/api/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.SetToken("")
	page := getPage(t, f, "user=BOB")
	assert.Len(t, page.Data, 3)
	assert.Len(t, f.RequestsTo("/api/events"), 2)
}

func TestCursorRoundTrip(t *testing.T) {
	ts, id, err := DecodeCursor(EncodeCursor("2026-01-01T00:00:00Z", "x|y"))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T00:00:00Z", ts)
	assert.Equal(t, "x|y", id)

	_, _, err = DecodeCursor("!!")
	assert.Error(t, err)
}
