package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsclarke/mealie/internal/mealietest"
	"github.com/rsclarke/mealie/mealie"
)

type cli struct {
	t      *testing.T
	srv    *mealietest.Server
	common []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	for _, key := range []string{"MEALIE_URL", "MEALIE_API_KEY", "MEALIE_USERNAME", "MEALIE_PASSWORD", "MEALIE_SESSION_DB", "MEALIE_KEYRING"} {
		t.Setenv(key, "")
	}
	srv, ts := mealietest.Start(t)
	dir := t.TempDir()
	return &cli{
		t:   t,
		srv: srv,
		common: []string{
			"--url", ts.URL,
			"--config", filepath.Join(dir, "config.yaml"),
			"--session-db", filepath.Join(dir, "sessions.db"),
		},
	}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append(args, c.common...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (c *cli) authed(args ...string) (string, error) {
	c.t.Helper()
	out, _, err := c.run(append(args, "--api-key", mealietest.APIKey)...)
	return out, err
}

func TestAbout(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("about", "--jq", ".version")
	require.NoError(t, err)
	assert.Equal(t, "\""+mealietest.Version+"\"\n", out)

	out, _, err = c.run("about", "--jq", ".version", "-r")
	require.NoError(t, err)
	assert.Equal(t, mealietest.Version+"\n", out)
	assert.Empty(t, c.srv.LastRequest().Authorization)
}

func TestMissingURL(t *testing.T) {
	for _, key := range []string{"MEALIE_URL", "MEALIE_API_KEY"} {
		t.Setenv(key, "")
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"about", "--config", filepath.Join(t.TempDir(), "none.yaml")}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server URL required")
}

func TestInvalidJQ(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("about", "--jq", ".[ | bad")
	assert.Error(t, err)
}

func TestLoginSessionLifecycle(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("login", "--username", mealietest.Username, "--password", mealietest.Password, "--jq", ".subject", "-r")
	require.NoError(t, err)
	assert.Equal(t, mealietest.Username+"\n", out)

	out, _, err = c.run("whoami", "--jq", ".full_name", "-r")
	require.NoError(t, err)
	assert.Equal(t, "Change Me\n", out)
	assert.Equal(t, 1, c.srv.TokensIssued())
	assert.True(t, strings.HasPrefix(c.srv.LastRequest().Authorization, "Bearer "))

	_, _, err = c.run("refresh")
	require.NoError(t, err)
	assert.Equal(t, 2, c.srv.TokensIssued())

	out, _, err = c.run("logout", "--jq", ".logged_out")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, _, err = c.run("whoami")
	assert.ErrorIs(t, err, mealie.ErrUnauthenticated)
}

func TestLoginRequiresPassword(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run("login", "--username", mealietest.Username)
	require.Error(t, err)
	assert.Empty(t, c.srv.Requests())
}

func TestDeferredPasswordLogin(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run("debug", "version", "--username", mealietest.Username, "--password", mealietest.Password, "--jq", ".version", "-r")
	require.NoError(t, err)
	assert.Equal(t, mealietest.Version+"\n", out)
	assert.Equal(t, "/api/auth/token", c.srv.Requests()[0].Path)
}

func TestRecipes(t *testing.T) {
	c := newCLI(t)

	out, err := c.authed("recipes", "get", "pasta-carbonara", "--jq", ".name", "-r")
	require.NoError(t, err)
	assert.Equal(t, "Pasta Carbonara\n", out)

	out, err = c.authed("recipes", "list", "--limit", "5", "--jq", "length")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
	assert.Equal(t, "limit=5&start=0", c.srv.LastRequest().RawQuery)

	out, err = c.authed("recipes", "create-url", "https://example.com/recipes/Lemon-Tart/", "--jq", ".slug", "-r")
	require.NoError(t, err)
	assert.Equal(t, "lemon-tart\n", out)

	_, err = c.authed("recipes", "delete", "pasta-carbonara")
	require.NoError(t, err)
	_, err = c.authed("recipes", "get", "pasta-carbonara")
	var apiErr *mealie.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestRecipeZipToFile(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "recipe.zip")

	_, err := c.authed("recipes", "zip", "pasta-carbonara", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestTagsList(t *testing.T) {
	c := newCLI(t)

	out, err := c.authed("tags", "list", "--jq", ".[].name", "-r")
	require.NoError(t, err)
	assert.Equal(t, "Dinner\n", out)
}

func TestShoppingListToggle(t *testing.T) {
	c := newCLI(t)

	out, err := c.authed("shopping-lists", "toggle", "1", "0", "--jq", ".items[0].checked")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = c.authed("shopping-lists", "toggle", "one", "0")
	assert.Error(t, err)
}

func TestMealPlanToday(t *testing.T) {
	c := newCLI(t)

	out, err := c.authed("mealplans", "today", "--jq", ".slug", "-r")
	require.NoError(t, err)
	assert.Equal(t, "pasta-carbonara\n", out)
}

func TestBackups(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(t.TempDir(), "backup.zip")

	out, err := c.authed("backups", "create", "--tag", "nightly", "--jq", ".name", "-r")
	require.NoError(t, err)
	assert.Equal(t, "nightly_export.zip\n", out)

	_, stderr, err := c.run("backups", "download", "mealie_2021-May-01.zip", "-o", path, "--api-key", mealietest.APIKey)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote 9 bytes")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK-backup", string(data))

	out, err = c.authed("backups", "list", "--jq", "length")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestDebugLog(t *testing.T) {
	c := newCLI(t)

	out, err := c.authed("debug", "log", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "INFO line 1\nINFO line 2\n", out)
}

func TestTraceWritesSpans(t *testing.T) {
	c := newCLI(t)

	_, stderr, err := c.run("about", "--trace")
	require.NoError(t, err)
	assert.Contains(t, stderr, "GET /api/app/about")
}
