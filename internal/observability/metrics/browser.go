package metrics

import (
	"time"

	obserrors "github.com/target/mmk-event-browser/internal/observability/errors"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	// ResultStale marks a page response discarded because a newer reset superseded it.
	ResultStale = "stale"
)

// PageMetric captures one page fetch for metric emission.
type PageMetric struct {
	// Kind is "first" for the page fetched by a reset and "next" for scroll loads.
	Kind     string
	Result   string
	Rows     int
	Total    int
	Duration time.Duration
	Err      error
}

// EmitPageFetch emits standardised page fetch metrics.
func EmitPageFetch(sink statsd.Sink, in PageMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"kind":   in.Kind,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("browser.page", 1, tags)
	if in.Duration > 0 {
		sink.Timing("browser.page.duration", in.Duration, CloneTags(tags))
	}
	if in.Result == ResultSuccess {
		sink.Gauge("browser.rows.rendered", float64(in.Total), nil)
	}
}

// InspectMetric captures one detail lookup.
type InspectMetric struct {
	Result   string
	CacheHit bool
	Err      error
}

// EmitInspect emits detail inspector metrics.
func EmitInspect(sink statsd.Sink, in InspectMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result, "cache": "miss"}
	if in.CacheHit {
		tags["cache"] = "hit"
	}
	if in.Err != nil && in.Result == ResultError {
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("browser.inspect", 1, tags)
}

// EmitAuthExpired counts credential teardowns caused by a 401.
func EmitAuthExpired(sink statsd.Sink) {
	if sink == nil {
		return
	}
	sink.Count("browser.auth.expired", 1, nil)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
