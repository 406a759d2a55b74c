package terminal

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/target/mmk-event-browser/internal/domain/model"
	"github.com/target/mmk-event-browser/internal/service"
)

const barWidth = 40

// writeDashboard prints the 24h summary as titled key/count sections.
func writeDashboard(w io.Writer, d model.DashboardSummary) error {
	labels := service.NewRowRenderer(0)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	sections := []struct {
		title string
		items []model.KV
		label func(string) string
	}{
		{"Active agents", d.ActiveAgents, nil},
		{"Top event types", d.TopEventTypes, labels.EventTypeLabel},
		{"Severity (24h)", d.Severity24h, service.SeverityLabel},
		{"Hosts (24h)", d.Hosts24h, nil},
		{"Top users (24h)", d.TopUsers24h, nil},
		{"Top processes (24h)", d.TopProcesses24h, nil},
	}
	for _, s := range sections {
		if err := writef(tw, "%s\n", s.title); err != nil {
			return err
		}
		if len(s.items) == 0 {
			if err := writef(tw, "  (none)\n"); err != nil {
				return err
			}
		}
		for _, kv := range s.items {
			key := kv.Key
			if s.label != nil {
				key = s.label(key)
			}
			if err := writef(tw, "  %s\t%s\n", dash(service.EscapeText(key)), service.EscapeText(kv.ValueString())); err != nil {
				return err
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush dashboard: %w", err)
	}

	if err := writeHourly(w, d.EventsPerHour24); err != nil {
		return err
	}
	return writeLogins(w, d.LastLogins)
}

func writeHourly(w io.Writer, counts []int) error {
	if err := writeln(w, "Events per hour (24h)"); err != nil {
		return err
	}
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}
	for hour, c := range counts {
		n := 0
		if peak > 0 {
			n = c * barWidth / peak
		}
		if err := writef(w, "  %s %s %d\n", model.HourlyLabel(hour), strings.Repeat("#", n), c); err != nil {
			return err
		}
	}
	return nil
}

func writeLogins(w io.Writer, logins []model.EventRecord) error {
	if err := writeln(w, "Last logins"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, rec := range logins {
		if err := writef(tw, "  %s\t%s\t%s\n",
			dash(service.EscapeText(rec.Timestamp)),
			dash(service.EscapeText(rec.User)),
			dash(service.EscapeText(rec.Hostname)),
		); err != nil {
			return err
		}
	}
	if len(logins) == 0 {
		if err := writeln(tw, "  (none)"); err != nil {
			return err
		}
	}
	return tw.Flush()
}
