package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/target/mmk-event-browser/internal/domain/model"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/observability/metrics"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
	"github.com/target/mmk-event-browser/internal/ports"
)

const (
	defaultDetailCacheSize = 256
	defaultDetailCacheTTL  = 5 * time.Minute
)

// DetailFormat selects how the inspector renders a record.
type DetailFormat string

const (
	FormatJSON DetailFormat = "json"
	FormatYAML DetailFormat = "yaml"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// InspectorConfig groups inspector tunables.
type InspectorConfig struct {
	CacheSize int
	CacheTTL  time.Duration
	Format    DetailFormat
}

// InspectorObservers groups the inspector's output and telemetry.
type InspectorObservers struct {
	Presenter ports.Presenter // Required
	Metrics   statsd.Sink
	Logger    *slog.Logger
}

// InspectorOptions groups dependencies for Inspector.
type InspectorOptions struct {
	Source    ports.EventSource // Required
	Config    InspectorConfig
	Observers InspectorObservers
}

// Inspector fetches single records for the detail overlay. Its failures never
// touch the browser's pagination state.
type Inspector struct {
	source    ports.EventSource
	presenter ports.Presenter
	metrics   statsd.Sink
	logger    *slog.Logger
	jems      JMESPathEvaluator

	cache  *expirable.LRU[string, model.EventDetail]
	flight singleflight.Group

	format atomic.Value // DetailFormat
}

// NewInspector constructs an Inspector. It panics if Source or Presenter is nil.
func NewInspector(opts InspectorOptions) *Inspector {
	if opts.Source == nil {
		panic("service: InspectorOptions.Source is required")
	}
	if opts.Observers.Presenter == nil {
		panic("service: InspectorObservers.Presenter is required")
	}
	size := opts.Config.CacheSize
	if size <= 0 {
		size = defaultDetailCacheSize
	}
	ttl := opts.Config.CacheTTL
	if ttl <= 0 {
		ttl = defaultDetailCacheTTL
	}
	logger := opts.Observers.Logger
	if logger == nil {
		logger = slog.Default()
	}

	in := &Inspector{
		source:    opts.Source,
		presenter: opts.Observers.Presenter,
		metrics:   opts.Observers.Metrics,
		logger:    logger.With("component", "inspector"),
		jems:      jmespathLibEvaluator{},
		cache:     expirable.NewLRU[string, model.EventDetail](size, nil, ttl),
	}
	in.SetFormat(opts.Config.Format)
	return in
}

// SetFormat switches between JSON and YAML output. Unknown formats mean JSON.
func (in *Inspector) SetFormat(f DetailFormat) {
	if f != FormatYAML {
		f = FormatJSON
	}
	in.format.Store(f)
}

// Format returns the current output format.
func (in *Inspector) Format() DetailFormat {
	if f, ok := in.format.Load().(DetailFormat); ok {
		return f
	}
	return FormatJSON
}

// Inspect fetches the record for id and shows it pretty-printed under the title
// "Event <id>". An empty id is rejected without a network call.
func (in *Inspector) Inspect(ctx context.Context, id string) error {
	return in.InspectWith(ctx, id, "")
}

// InspectWith is Inspect with an optional JMESPath projection applied to the record.
func (in *Inspector) InspectWith(ctx context.Context, id, expr string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.ErrMissingID
	}
	expr = strings.TrimSpace(expr)
	if err := in.jems.Validate(expr); err != nil {
		return apperrors.Validationf("invalid projection %q: %v", expr, err)
	}

	detail, hit, err := in.lookup(ctx, id)
	if err != nil {
		in.logger.WarnContext(ctx, "event lookup failed", "event_id", id, "error", err)
		metrics.EmitInspect(in.metrics, metrics.InspectMetric{Result: metrics.ResultError, Err: err})
		return fmt.Errorf("inspect event %s: %w", id, err)
	}
	metrics.EmitInspect(in.metrics, metrics.InspectMetric{Result: metrics.ResultSuccess, CacheHit: hit})

	body, err := in.Render(detail, expr)
	if err != nil {
		return fmt.Errorf("render event %s: %w", id, err)
	}
	in.presenter.ShowDetail("Event "+id, body)
	return nil
}

// Forget drops cached records, for example after the credential changes.
func (in *Inspector) Forget() { in.cache.Purge() }

// lookup returns the record from cache or a single collapsed network call.
func (in *Inspector) lookup(ctx context.Context, id string) (model.EventDetail, bool, error) {
	if detail, ok := in.cache.Get(id); ok {
		return detail, true, nil
	}
	// The shared call outlives any one caller; each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := in.flight.DoChan(id, func() (any, error) {
		detail, err := in.source.GetEvent(shared, id)
		if err != nil {
			return nil, err
		}
		in.cache.Add(id, detail)
		return detail, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return model.EventDetail{}, false, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return model.EventDetail{}, false, res.Err
	}
	detail, ok := res.Val.(model.EventDetail)
	if !ok {
		return model.EventDetail{}, false, errors.New("unexpected lookup result")
	}
	return detail, false, nil
}

// Render formats a record in the current output format, optionally projected
// through expr.
func (in *Inspector) Render(detail model.EventDetail, expr string) (string, error) {
	raw := detail.Raw
	if len(raw) == 0 {
		b, err := json.Marshal(detail.Record)
		if err != nil {
			return "", fmt.Errorf("encode record: %w", err)
		}
		raw = b
	}

	var data any
	if expr != "" {
		if err := json.Unmarshal(raw, &data); err != nil {
			return "", apperrors.MalformedResponse(err, "decode event detail")
		}
		projected, err := in.jems.Evaluate(expr, data)
		if err != nil {
			return "", apperrors.Validationf("evaluate projection %q: %v", expr, err)
		}
		data = projected
	} else {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return "", apperrors.MalformedResponse(err, "decode event detail")
		}
	}

	if in.Format() == FormatYAML {
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return EscapeText(strings.TrimRight(string(out), "\n")), nil
	}
	return prettyJSON(data)
}

func prettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	// JSON string escaping already neutralises control characters.
	return strings.TrimRight(buf.String(), "\n"), nil
}
