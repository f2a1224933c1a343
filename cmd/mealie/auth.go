package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsclarke/mealie/internal/session"
	"github.com/rsclarke/mealie/mealie"
)

func newLoginCmd(a *app) *cobra.Command {
	var rememberMe bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with username and password and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Username == "" || a.cfg.Password == "" {
				return errors.New("username and password required (use --username/--password or MEALIE_USERNAME/MEALIE_PASSWORD)")
			}
			c, err := a.newBareClient()
			if err != nil {
				return err
			}
			if err := c.Login(cmd.Context(), a.cfg.Username, a.cfg.Password, rememberMe); err != nil {
				return err
			}
			if err := a.saveSession(cmd.Context(), c); err != nil {
				return err
			}
			return a.printJSON(cmd, sessionInfo(c))
		},
	}
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "ask the server for a long-lived token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session for the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newBareClient()
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			err = st.Delete(cmd.Context(), c.BaseURL())
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				return err
			}
			return a.printJSON(cmd, map[string]any{
				"base_url":   c.BaseURL(),
				"logged_out": err == nil,
			})
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the saved session token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.RefreshToken(cmd.Context()); err != nil {
				return err
			}
			if err := a.saveSession(cmd.Context(), c); err != nil {
				return err
			}
			return a.printJSON(cmd, sessionInfo(c))
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			u, err := c.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, u)
		},
	}
}

type sessionSummary struct {
	BaseURL string `json:"base_url"`
	Subject string `json:"subject,omitempty"`
	Expires string `json:"expires,omitempty"`
}

func sessionInfo(c *mealie.Client) sessionSummary {
	s := sessionSummary{BaseURL: c.BaseURL(), Subject: c.Credentials().Subject()}
	if exp := c.Credentials().Expiry(); !exp.IsZero() {
		s.Expires = exp.UTC().Format(time.RFC3339)
	}
	return s
}

