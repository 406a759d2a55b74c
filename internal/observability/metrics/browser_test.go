package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
)

func TestEmitPageFetch_Success(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitPageFetch(rec, PageMetric{Kind: "first", Result: ResultSuccess, Rows: 3, Total: 3, Duration: time.Millisecond})

	samples := rec.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, "browser.page", samples[0].Name)
	assert.Equal(t, map[string]string{"kind": "first", "result": "success"}, samples[0].Tags)
	assert.Equal(t, "browser.page.duration", samples[1].Name)
	assert.Equal(t, "browser.rows.rendered", samples[2].Name)
	assert.InDelta(t, 3.0, samples[2].Value, 0.001)
}

func TestEmitPageFetch_ErrorClass(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitPageFetch(rec, PageMetric{Kind: "next", Result: ResultError, Err: apperrors.RequestFailed(502, "bad gateway")})

	assert.Equal(t, int64(1), rec.CountTotal("browser.page", map[string]string{"error_class": "request_failed"}))
}

func TestEmitters_NilSink(t *testing.T) {
	EmitPageFetch(nil, PageMetric{})
	EmitInspect(nil, InspectMetric{})
	EmitAuthExpired(nil)
}

func TestEmitInspect(t *testing.T) {
	rec := &statsd.Recorder{}
	EmitInspect(rec, InspectMetric{Result: ResultSuccess, CacheHit: true})
	assert.Equal(t, int64(1), rec.CountTotal("browser.inspect", map[string]string{"cache": "hit"}))
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
