package testutil

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/target/mmk-event-browser/internal/domain/model"
)

// RecordedRequest is one request observed by the fake event store.
type RecordedRequest struct {
	Path          string
	RawQuery      string
	Authorization string
	RequestID     string
}

// FakeEventStore is an in-process event store speaking the backend's HTTP contract:
// keyset cursor paging over events sorted newest first, case-insensitive field
// filters, substring or regex free-text search, and Basic auth.
type FakeEventStore struct {
	Server *httptest.Server

	mu        sync.Mutex
	events    []model.EventRecord
	token     string
	requests  []RecordedRequest
	failNext  []int
	listGate  chan struct{}
	dashboard model.DashboardSummary
}

// NewFakeEventStore starts a fake store seeded with events. When token is non-empty
// every request must carry "Authorization: Basic <token>" (exports may pass
// auth=<token> instead).
func NewFakeEventStore(t interface{ Cleanup(func()) }, token string, events []model.EventRecord) *FakeEventStore {
	f := &FakeEventStore{token: token}
	f.SetEvents(events)

	r := mux.NewRouter().UseEncodedPath()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", f.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/events.csv", f.handleExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/events.json", f.handleExportJSON).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", f.handleEventByID).Methods(http.MethodGet)
	api.HandleFunc("/events", f.handleEvents).Methods(http.MethodGet)
	r.Use(f.record)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake store.
func (f *FakeEventStore) URL() string { return f.Server.URL }

// SetEvents replaces the stored events.
func (f *FakeEventStore) SetEvents(events []model.EventRecord) {
	sorted := make([]model.EventRecord, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp == sorted[j].Timestamp {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	f.mu.Lock()
	f.events = sorted
	f.mu.Unlock()
}

// SetToken changes the accepted token; "" disables auth.
func (f *FakeEventStore) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

// SetDashboard sets the /api/dashboard payload.
func (f *FakeEventStore) SetDashboard(d model.DashboardSummary) {
	f.mu.Lock()
	f.dashboard = d
	f.mu.Unlock()
}

// FailNext makes the next request answer with status (plain-text body "injected failure").
func (f *FakeEventStore) FailNext(status int) {
	f.mu.Lock()
	f.failNext = append(f.failNext, status)
	f.mu.Unlock()
}

// HoldLists blocks /api/events responses until ReleaseLists is called.
func (f *FakeEventStore) HoldLists() {
	f.mu.Lock()
	f.listGate = make(chan struct{})
	f.mu.Unlock()
}

// ReleaseLists unblocks held /api/events responses.
func (f *FakeEventStore) ReleaseLists() {
	f.mu.Lock()
	gate := f.listGate
	f.listGate = nil
	f.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// Requests returns every request observed so far.
func (f *FakeEventStore) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo returns the requests made to path.
func (f *FakeEventStore) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeEventStore) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		var status int
		if len(f.failNext) > 0 {
			status = f.failNext[0]
			f.failNext = f.failNext[1:]
		}
		token := f.token
		f.mu.Unlock()

		if status != 0 {
			http.Error(w, "injected failure", status)
			return
		}
		if token != "" && !authorized(r, token) {
			w.Header().Set("WWW-Authenticate", `Basic realm="siem", charset="UTF-8"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authorized(r *http.Request, token string) bool {
	if r.Header.Get("Authorization") == "Basic "+token {
		return true
	}
	isExport := strings.HasSuffix(r.URL.Path, ".csv") || strings.HasSuffix(r.URL.Path, ".json")
	return isExport && r.URL.Query().Get("auth") == token
}

func (f *FakeEventStore) handleEvents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	page, err := f.query(r, 500, 100)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"data":        page.Data,
		"count":       len(page.Data),
		"has_more":    page.HasMore,
		"next_cursor": page.NextCursor,
	})
}

func (f *FakeEventStore) handleEventByID(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	id = strings.TrimSpace(id)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": e})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": "error", "message": "not found"})
}

func (f *FakeEventStore) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	page, err := f.query(r, 50000, 50000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"_id", "timestamp", "hostname", "user", "eventtype", "severity", "rawlog"})
	for _, e := range page.Data {
		_ = cw.Write([]string{e.ID, e.Timestamp, e.Hostname, e.User, e.EventType, e.Severity, e.RawLog})
	}
	cw.Flush()
}

func (f *FakeEventStore) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	page, err := f.query(r, 50000, 50000)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": page.Data, "count": len(page.Data)})
}

func (f *FakeEventStore) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	d := f.dashboard
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, d)
}

func (f *FakeEventStore) query(r *http.Request, maxLimit, defLimit int) (model.EventPage, error) {
	q := r.URL.Query()
	limit := defLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return model.EventPage{}, errors.New("invalid limit")
		}
		limit = min(n, maxLimit)
	}

	text := strings.TrimSpace(q.Get("q"))
	var rx *regexp.Regexp
	if text != "" && q.Get("re") == "1" {
		compiled, err := regexp.Compile(text)
		if err != nil {
			return model.EventPage{}, errors.New("bad regex")
		}
		rx = compiled
	}

	afterTS, afterID := "", ""
	if cur := strings.TrimSpace(q.Get("cursor")); cur != "" {
		ts, id, err := DecodeCursor(cur)
		if err != nil {
			return model.EventPage{}, errors.New("bad cursor")
		}
		afterTS, afterID = ts, id
	}

	fields := map[string]func(model.EventRecord) string{
		"user":     func(e model.EventRecord) string { return e.User },
		"host":     func(e model.EventRecord) string { return e.Hostname },
		"type":     func(e model.EventRecord) string { return e.EventType },
		"severity": func(e model.EventRecord) string { return e.Severity },
		"process":  func(e model.EventRecord) string { return e.Process },
	}
	match := func(e model.EventRecord) bool {
		for name, get := range fields {
			want := strings.TrimSpace(q.Get(name))
			if want != "" && !strings.EqualFold(strings.TrimSpace(get(e)), want) {
				return false
			}
		}
		if text == "" {
			return true
		}
		hay := strings.Join([]string{e.ID, e.AgentID, e.Timestamp, e.Hostname, e.Source,
			e.EventType, e.Severity, e.User, e.Process, e.Command, e.RawLog}, "\n")
		if rx != nil {
			return rx.MatchString(hay)
		}
		return strings.Contains(strings.ToLower(hay), strings.ToLower(text))
	}
	after := func(e model.EventRecord) bool {
		if afterTS == "" && afterID == "" {
			return true
		}
		return e.Timestamp < afterTS || (e.Timestamp == afterTS && e.ID < afterID)
	}

	f.mu.Lock()
	events := f.events
	f.mu.Unlock()

	out := make([]model.EventRecord, 0, limit+1)
	for _, e := range events {
		if !after(e) || !match(e) {
			continue
		}
		out = append(out, e)
		if len(out) > limit {
			break
		}
	}

	page := model.EventPage{HasMore: len(out) > limit}
	if page.HasMore {
		out = out[:limit]
		last := out[len(out)-1]
		page.NextCursor = EncodeCursor(last.Timestamp, last.ID)
	}
	page.Data = out
	return page, nil
}

// EncodeCursor builds the fake store's continuation token.
func EncodeCursor(ts, id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(ts + "|" + id))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(cur string) (string, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cur)
	if err != nil {
		return "", "", err
	}
	ts, id, ok := strings.Cut(string(b), "|")
	if !ok {
		return "", "", errors.New("bad cursor")
	}
	return ts, id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
