package eventapi

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/target/mmk-event-browser/internal/domain/model"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/query"
)

// ExportFormat selects the bulk export endpoint.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat accepts "csv" or "json" in any case.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case ExportCSV:
		return ExportCSV, nil
	case ExportJSON:
		return ExportJSON, nil
	default:
		return "", apperrors.Validationf("unknown export format %q (want csv or json)", s)
	}
}

func (f ExportFormat) path() string { return pathEvents + "." + string(f) }

// ExportLink returns a download URL for the current filters. The link never carries
// a cursor and is bounded by the export limit. When credential embedding is on, the
// current token is appended as auth=<token>.
func (c *Client) ExportLink(ctx context.Context, format ExportFormat, filters model.FilterSet) (string, error) {
	if _, err := ParseExportFormat(string(format)); err != nil {
		return "", err
	}
	params := query.Build(filters, "", query.ModeExport, c.limits)
	if c.embed {
		cred, err := c.credential(ctx)
		if err != nil {
			return "", err
		}
		if cred != nil {
			params = params.With(query.ParamAuth, cred.Token)
		}
	}
	return c.endpoint(format.path(), params), nil
}

// DownloadExport streams the export for filters into w using header auth, so no
// token appears in the URL. It returns the number of bytes written.
func (c *Client) DownloadExport(ctx context.Context, format ExportFormat, filters model.FilterSet, w io.Writer) (int64, error) {
	if _, err := ParseExportFormat(string(format)); err != nil {
		return 0, err
	}
	cred, err := c.credential(ctx)
	if err != nil {
		return 0, err
	}

	params := query.Build(filters, "", query.ModeExport, c.limits)
	resp, err := c.send(ctx, format.path(), params, cred)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp.Body)

	if err := c.check(ctx, resp, cred != nil); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("write %s export: %w", format, err)
	}
	return n, nil
}
