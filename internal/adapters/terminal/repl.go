package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/target/mmk-event-browser/internal/adapters/eventapi"
	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/domain/model"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/ports"
	"github.com/target/mmk-event-browser/internal/service"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

// Exporter is the part of the event store client used for exports and the dashboard.
type Exporter interface {
	ExportLink(ctx context.Context, format eventapi.ExportFormat, filters model.FilterSet) (string, error)
	DownloadExport(ctx context.Context, format eventapi.ExportFormat, filters model.FilterSet, w io.Writer) (int64, error)
	Dashboard(ctx context.Context) (model.DashboardSummary, error)
}

// Services groups the browser services the command loop drives.
type Services struct {
	Triggers  *service.Triggers
	Browser   *service.Browser
	Inspector *service.Inspector
	Session   *service.SessionService
	Exporter  Exporter
}

// REPLOptions groups dependencies for REPL.
type REPLOptions struct {
	Services Services
	View     *View
	Logger   *slog.Logger
}

type commandFn func(ctx context.Context, args []string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFn
}

// REPL reads commands line by line and applies them to the browser.
type REPL struct {
	svc      Services
	view     *View
	logger   *slog.Logger
	commands map[string]command
	// createFile opens export destinations; tests swap it out.
	createFile func(name string) (io.WriteCloser, error)
}

var _ ports.AuthExpiredHandler = (*REPL)(nil)

// NewREPL constructs a REPL.
func NewREPL(opts REPLOptions) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &REPL{
		svc:    opts.Services,
		view:   opts.View,
		logger: logger.With("component", "repl"),
		createFile: func(name string) (io.WriteCloser, error) {
			return os.Create(name) //nolint:gosec // path is chosen by the local user
		},
	}
	r.commands = r.commandTable()
	return r
}

func (r *REPL) commandTable() map[string]command {
	table := []command{
		{"q", "q <text>", "set the free-text query (empty clears)", r.editField(model.FilterQuery)},
		{"user", "user <name>", "filter by user", r.editField(model.FilterUser)},
		{"host", "host <name>", "filter by hostname", r.editField(model.FilterHost)},
		{"type", "type <eventtype>", "filter by event type", r.editField(model.FilterType)},
		{"severity", "severity <level>", "filter by severity", r.editField(model.FilterSeverity)},
		{"process", "process <name>", "filter by process", r.editField(model.FilterProcess)},
		{"re", "re on|off", "treat the query as a regular expression", r.runRegex},
		{"reload", "reload", "reload from the first page", r.runReload},
		{"down", "down [n]", "scroll down (loads more near the end)", r.runScroll(1)},
		{"up", "up [n]", "scroll up", r.runScroll(-1)},
		{"open", "open <n>", "show the n-th visible row in full", r.runOpen},
		{"inspect", "inspect <id> [jmespath]", "show an event by id, optionally projected", r.runInspect},
		{"yaml", "yaml on|off", "show details as YAML instead of JSON", r.runYAML},
		{"export", "export csv|json [file]", "download the current view", r.runExport},
		{"link", "link csv|json", "print a download link for the current view", r.runLink},
		{"dashboard", "dashboard", "print the 24h summary", r.runDashboard},
		{"login", "login <user> <password>", "start a session", r.runLogin},
		{"logout", "logout", "end the session", r.runLogout},
		{"status", "status", "show filters, paging and session state", r.runStatus},
		{"help", "help", "list commands", r.runHelp},
		{"quit", "quit", "leave", func(context.Context, []string) error { return ErrQuit }},
	}
	out := make(map[string]command, len(table)+1)
	for _, c := range table {
		out[c.name] = c
	}
	out["exit"] = out["quit"]
	return out
}

// Run reads commands from in until EOF, quit, or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	r.view.Printf("Type 'help' for commands.\n> ")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if err := r.Execute(ctx, line); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			r.view.Printf("> ")
		}
	}
}

// Execute runs one command line. Command failures are printed; only ErrQuit and
// output failures are returned.
func (r *REPL) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return r.view.Render()
	}
	cmd, ok := r.commands[strings.ToLower(fields[0])]
	if !ok {
		r.view.Printf("unknown command %q (try 'help')\n", fields[0])
		return nil
	}
	err := cmd.run(ctx, fields[1:])
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuit):
		return err
	case errors.Is(err, context.Canceled):
		return err
	}
	r.logger.DebugContext(ctx, "command failed", "command", cmd.name, "error", err)
	r.view.Printf("error: %s\n", apperrors.UserMessage(err))
	return nil
}

// OnAuthExpired drops cached details and tells the user the session is gone.
func (r *REPL) OnAuthExpired(context.Context) {
	r.svc.Inspector.Forget()
	r.view.Printf("Session expired or rejected. Log in again with: login <user> <password>\n")
}

func (r *REPL) editField(field model.FilterField) commandFn {
	return func(ctx context.Context, args []string) error {
		value := strings.Join(args, " ")
		r.svc.Triggers.Edit(ctx, field, value)
		r.view.Printf("%s = %q (applies shortly; press enter to refresh)\n", field, value)
		return nil
	}
}

func (r *REPL) runRegex(ctx context.Context, args []string) error {
	on, err := parseOnOff(args)
	if err != nil {
		return err
	}
	if err := r.svc.Triggers.SetRegex(ctx, on); err != nil {
		return err
	}
	return r.view.Render()
}

func (r *REPL) runReload(ctx context.Context, _ []string) error {
	if err := r.svc.Triggers.Reload(ctx); err != nil {
		return err
	}
	return r.view.Render()
}

func (r *REPL) runScroll(sign int) commandFn {
	return func(ctx context.Context, args []string) error {
		n := r.view.Height()
		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed <= 0 {
				return apperrors.Validationf("invalid row count %q", args[0])
			}
			n = parsed
		}
		visible, content := r.view.ScrollBy(sign * n)
		if sign > 0 {
			if err := r.svc.Triggers.Scrolled(ctx, visible, content); err != nil {
				return err
			}
		}
		return r.view.Render()
	}
}

func (r *REPL) runOpen(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperrors.Validation("usage: open <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return apperrors.Validationf("invalid row number %q", args[0])
	}
	id, ok := r.view.RowID(n)
	if !ok {
		return apperrors.Validationf("no visible row %d", n)
	}
	return r.svc.Triggers.RowClicked(ctx, id)
}

func (r *REPL) runInspect(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperrors.ErrMissingID
	}
	return r.svc.Inspector.InspectWith(ctx, args[0], strings.Join(args[1:], " "))
}

func (r *REPL) runYAML(_ context.Context, args []string) error {
	on, err := parseOnOff(args)
	if err != nil {
		return err
	}
	if on {
		r.svc.Inspector.SetFormat(service.FormatYAML)
	} else {
		r.svc.Inspector.SetFormat(service.FormatJSON)
	}
	r.view.Printf("detail format: %s\n", r.svc.Inspector.Format())
	return nil
}

func (r *REPL) runExport(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return apperrors.Validation("usage: export csv|json [file]")
	}
	format, err := eventapi.ParseExportFormat(args[0])
	if err != nil {
		return err
	}
	filters := r.svc.Browser.Filters()

	if len(args) == 1 {
		var buf strings.Builder
		if _, err := r.svc.Exporter.DownloadExport(ctx, format, filters, &buf); err != nil {
			return err
		}
		r.view.Printf("%s\n", service.EscapeText(strings.TrimRight(buf.String(), "\n")))
		return nil
	}

	f, err := r.createFile(args[1])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[1], err)
	}
	n, dlErr := r.svc.Exporter.DownloadExport(ctx, format, filters, f)
	if closeErr := f.Close(); closeErr != nil && dlErr == nil {
		dlErr = fmt.Errorf("close %s: %w", args[1], closeErr)
	}
	if dlErr != nil {
		return dlErr
	}
	r.view.Printf("wrote %d bytes to %s\n", n, args[1])
	return nil
}

func (r *REPL) runLink(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperrors.Validation("usage: link csv|json")
	}
	format, err := eventapi.ParseExportFormat(args[0])
	if err != nil {
		return err
	}
	link, err := r.svc.Exporter.ExportLink(ctx, format, r.svc.Browser.Filters())
	if err != nil {
		return err
	}
	r.view.Printf("%s\n", link)
	return nil
}

func (r *REPL) runDashboard(ctx context.Context, _ []string) error {
	d, err := r.svc.Exporter.Dashboard(ctx)
	if err != nil {
		return err
	}
	var buf strings.Builder
	if err := writeDashboard(&buf, d); err != nil {
		return err
	}
	r.view.Printf("%s", buf.String())
	return nil
}

func (r *REPL) runLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return apperrors.Validation("usage: login <user> <password>")
	}
	cred, err := r.svc.Session.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	r.svc.Inspector.Forget()
	r.view.Printf("logged in as %s\n", cred.Username)
	return r.runReload(ctx, nil)
}

func (r *REPL) runLogout(ctx context.Context, _ []string) error {
	if err := r.svc.Session.Logout(ctx); err != nil {
		return err
	}
	r.svc.Inspector.Forget()
	r.view.Printf("logged out\n")
	return nil
}

func (r *REPL) runStatus(ctx context.Context, _ []string) error {
	f := r.svc.Triggers.Filters()
	st := r.svc.Browser.State()
	who := "not logged in"
	if cred, err := r.svc.Session.Current(ctx); err == nil {
		who = describeCredential(cred)
	}

	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	lines := [][2]string{
		{"query", f.Query},
		{"regex", strconv.FormatBool(f.Regex)},
		{"user", f.User},
		{"host", f.Host},
		{"type", f.Type},
		{"severity", f.Severity},
		{"process", f.Process},
		{"rows", strconv.Itoa(r.svc.Browser.RowCount())},
		{"exhausted", strconv.FormatBool(st.Exhausted)},
		{"loading", strconv.FormatBool(st.FetchInFlight)},
		{"session", who},
		{"status", r.svc.Browser.Status()},
	}
	for _, l := range lines {
		if err := writef(tw, "%s\t%s\n", l[0], dash(l[1])); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.view.Printf("%s", buf.String())
	return nil
}

func (r *REPL) runHelp(context.Context, []string) error {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, name := range names {
		c := r.commands[name]
		if err := writef(tw, "  %s\t%s\n", c.usage, c.description); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	r.view.Printf("Commands (empty line redraws the table):\n%s", buf.String())
	return nil
}

func describeCredential(cred domainauth.Credential) string {
	if cred.Username != "" {
		return fmt.Sprintf("%s (%s)", cred.Username, cred.Scheme)
	}
	return fmt.Sprintf("token (%s)", cred.Scheme)
}

func parseOnOff(args []string) (bool, error) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no":
			return false, nil
		}
	}
	return false, apperrors.Validation("expected on or off")
}
