package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsclarke/mealie/internal/jq"
	"github.com/rsclarke/mealie/internal/logging"
	"github.com/rsclarke/mealie/internal/session"
	"github.com/rsclarke/mealie/internal/telemetry"
	"github.com/rsclarke/mealie/mealie"
)

// openStore returns the session store selected by the configuration,
// opening it on first use.
func (a *app) openStore() (session.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.cfg.Keyring {
		a.store = session.NewKeyringStore()
		return a.store, nil
	}
	st, err := session.OpenSQLite(a.cfg.SessionDB, a.logger.With(logging.Component("session")))
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	a.store = st
	return st, nil
}

// newClient builds an API client. Credentials come from, in order: the API
// key, a stored session, or a deferred password login.
func (a *app) newClient(ctx context.Context) (*mealie.Client, error) {
	c, err := a.newBareClient()
	if err != nil {
		return nil, err
	}
	if a.cfg.APIKey != "" {
		c.Authorize(a.cfg.APIKey)
		return c, nil
	}

	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	_, err = session.Restore(ctx, st, c.BaseURL(), c.Credentials())
	switch {
	case err == nil:
		a.logger.Debug("session restored", logging.BaseURL(c.BaseURL()))
		return c, nil
	case !errors.Is(err, session.ErrNotFound):
		return nil, err
	}

	if a.cfg.Username != "" && a.cfg.Password != "" {
		return a.newBareClient(mealie.WithPasswordLogin(a.cfg.Username, a.cfg.Password, false))
	}
	return c, nil
}

func (a *app) newBareClient(opts ...mealie.Option) (*mealie.Client, error) {
	if a.cfg.URL == "" {
		return nil, fmt.Errorf("server URL required (use --url flag or MEALIE_URL env var)")
	}

	hc := &http.Client{Timeout: a.cfg.Timeout}
	if a.flags.trace {
		hc.Transport = telemetry.Transport(nil)
	}
	base := []mealie.Option{
		mealie.WithHTTPClient(hc),
		mealie.WithLogger(a.logger.With(logging.Component("client"))),
	}
	return mealie.New(a.cfg.URL, append(base, opts...)...)
}

// saveSession persists the token the client currently holds.
func (a *app) saveSession(ctx context.Context, c *mealie.Client) error {
	s := session.FromCredentials(c.BaseURL(), c.Credentials())
	if s == nil {
		return errors.New("no token to save")
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	if err := st.Save(ctx, s); err != nil {
		return err
	}
	a.logger.Info("session saved", logging.BaseURL(s.BaseURL), zap.String("subject", s.Subject))
	return nil
}

// printJSON writes v as indented JSON, or each result of the --jq filter
// applied to it.
func (a *app) printJSON(cmd *cobra.Command, v any) error {
	results := []any{v}
	if a.flags.jq != "" {
		q, err := jq.Compile(a.flags.jq)
		if err != nil {
			return err
		}
		results, err = q.Run(cmd.Context(), v)
		if err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	for _, r := range results {
		if s, ok := r.(string); ok && a.flags.raw {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
			continue
		}
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}

// writeData writes binary command output to path, or to stdout when path
// is empty or "-".
func writeData(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, err := fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), path)
	return err
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
