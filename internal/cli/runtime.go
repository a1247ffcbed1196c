package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/simp-lee/logger"
	"github.com/spf13/cobra"

	"github.com/simp-lee/casedesk/internal/catalog"
	"github.com/simp-lee/casedesk/internal/config"
	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/listctl"
	"github.com/simp-lee/casedesk/internal/recordapi"
)

// maxLimit is the largest page the server returns.
const maxLimit = 100

// runtime carries what one command invocation needs: configuration, a logger
// writing to stderr and, once connected, a transport.
type runtime struct {
	cfg       *config.ClientConfig
	log       *logger.Logger
	transport *recordapi.Transport
	out       io.Writer
	errOut    io.Writer
	notified  bool
}

func newRuntime(cmd *cobra.Command, g *globalOptions) (*runtime, error) {
	cfg, err := config.LoadClient(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.server != "" {
		cfg.Server = g.server
	}
	if g.token != "" {
		cfg.Token = g.token
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := append(config.BuildLoggerOpts(&cfg.Log), logger.WithConsoleWriter(cmd.ErrOrStderr()))
	log, err := logger.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		log:    log,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

func (r *runtime) close() {
	if err := r.log.Close(); err != nil {
		fmt.Fprintln(r.errOut, "close logger:", err)
	}
}

func (r *runtime) transportOptions() []recordapi.Option {
	return []recordapi.Option{
		recordapi.WithHTTPClient(&http.Client{Timeout: r.cfg.TimeoutDuration()}),
		recordapi.WithLogger(r.log.Logger),
	}
}

// connect builds the transport. Without a token but with client credentials
// configured it logs in first.
func (r *runtime) connect(ctx context.Context) error {
	token := r.cfg.Token
	if token == "" && r.cfg.ClientID != "" && r.cfg.ClientSecret != "" {
		tok, err := recordapi.Login(ctx, r.cfg.Server, r.cfg.ClientID, r.cfg.ClientSecret, r.transportOptions()...)
		if err != nil {
			return fmt.Errorf("login as %s: %w", r.cfg.ClientID, err)
		}
		r.log.Debug("logged in", slog.String("client_id", r.cfg.ClientID), slog.Time("expires_at", tok.ExpiresAt))
		token = tok.Token
	}

	t, err := recordapi.NewTransport(r.cfg.Server, recordapi.Credential{Token: token}, r.transportOptions()...)
	if err != nil {
		return err
	}
	r.transport = t
	return nil
}

func (r *runtime) session(k catalog.Kind, limit int) listctl.Session {
	return k.Session(r.transport,
		listctl.WithLimit(limit),
		listctl.WithLogger(r.log.Logger),
		listctl.WithNotifier(listctl.NotifierFunc(r.notify)),
	)
}

// notify prints a notification and, for validation failures, one line per
// field.
func (r *runtime) notify(n listctl.Notification) {
	style := infoStyle
	switch n.Level {
	case listctl.LevelSuccess:
		style = successStyle
	case listctl.LevelError:
		style = errorStyle
		r.notified = true
	}
	fmt.Fprintln(r.errOut, style.Render(n.Message))

	fields := domain.FieldErrors(n.Err)
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(r.errOut, "  %s: %s\n", fieldStyle.Render(name), fields[name])
	}
}

// done marks err as already reported when a notification described it.
func (r *runtime) done(err error) error {
	if err != nil && r.notified {
		return errors.Join(errReported, err)
	}
	return err
}

func resolveKind(name string) (catalog.Kind, error) {
	k, ok := catalog.Lookup(name)
	if !ok {
		names := make([]string, 0, len(catalog.All()))
		for _, k := range catalog.All() {
			names = append(names, k.Name())
		}
		return catalog.Kind{}, fmt.Errorf("unknown kind %q: one of %s", name, strings.Join(names, ", "))
	}
	return k, nil
}

type assignment struct {
	key, value string
}

// parseAssignments splits "key=value" pairs, keeping their order. Values may
// contain '=' and may be empty.
func parseAssignments(pairs []string) ([]assignment, error) {
	out := make([]assignment, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", p)
		}
		out = append(out, assignment{key: key, value: value})
	}
	return out, nil
}

// locate pages through the records matching search until id is displayed.
func locate(ctx context.Context, s listctl.Session, k catalog.Kind, id, search string) error {
	var err error
	if search != "" {
		err = s.SetSearch(ctx, search)
	} else {
		err = s.Refetch(ctx)
	}
	if err != nil {
		return err
	}

	for {
		rows, err := s.Rows()
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.ID == id {
				return nil
			}
		}
		info := s.Info()
		if info.DisplayedPage >= info.TotalPages {
			return domain.NewAppError(domain.CodeNotFound, fmt.Sprintf("%s %s not found", k.Name(), id), nil)
		}
		if err := s.GotoPage(ctx, info.DisplayedPage+1); err != nil {
			return err
		}
	}
}
