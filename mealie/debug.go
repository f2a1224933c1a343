package mealie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AppInfo is the public description of the server.
type AppInfo struct {
	Production  bool   `json:"production"`
	Version     string `json:"version"`
	DemoStatus  bool   `json:"demo_status"`
	AllowSignup bool   `json:"allow_signup"`
}

// About returns public server information. It never sends credentials.
func (c *Client) About(ctx context.Context) (*AppInfo, error) {
	var info AppInfo
	if err := c.do(ctx, &Request{Method: http.MethodGet, Path: "app/about", SkipAuth: true}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DebugInfo describes the server's runtime configuration.
type DebugInfo struct {
	Production   bool   `json:"production"`
	Version      string `json:"version"`
	DemoStatus   bool   `json:"demo_status"`
	APIPort      int    `json:"api_port"`
	APIDocs      bool   `json:"api_docs"`
	DBType       string `json:"db_type"`
	DBURL        string `json:"db_url"`
	DefaultGroup string `json:"default_group"`
}

// DebugStatistics counts server content.
type DebugStatistics struct {
	TotalRecipes         int `json:"total_recipes"`
	TotalUsers           int `json:"total_users"`
	TotalGroups          int `json:"total_groups"`
	UncategorizedRecipes int `json:"uncategorized_recipes"`
	UntaggedRecipes      int `json:"untagged_recipes"`
}

// DebugVersion is the server version summary.
type DebugVersion struct {
	Production bool   `json:"production"`
	Version    string `json:"version"`
	DemoStatus bool   `json:"demo_status"`
}

func (c *Client) DebugInfo(ctx context.Context) (*DebugInfo, error) {
	var info DebugInfo
	if err := c.get(ctx, "debug", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) DebugStatistics(ctx context.Context) (*DebugStatistics, error) {
	var stats DebugStatistics
	if err := c.get(ctx, "debug/statistics", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) DebugVersion(ctx context.Context) (*DebugVersion, error) {
	var v DebugVersion
	if err := c.get(ctx, "debug/version", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// LastRecipeJSON returns the raw JSON the scraper last produced.
func (c *Client) LastRecipeJSON(ctx context.Context) (map[string]any, error) {
	resp, err := c.Send(ctx, &Request{Method: http.MethodGet, Path: "debug/last-recipe-json"})
	if err != nil {
		return nil, err
	}
	m, _ := resp.Payload.(map[string]any)
	return m, nil
}

// DebugLog returns the last lines of the server log.
func (c *Client) DebugLog(ctx context.Context, lines int) (string, error) {
	b, err := c.raw(ctx, &Request{Method: http.MethodGet, Path: fmt.Sprintf("debug/log/%d", lines)})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// File is a one-shot download handle issued by the server.
type File struct {
	client *Client

	FileToken string `json:"file_token"`
}

// Download fetches the file behind the token.
func (f *File) Download(ctx context.Context) ([]byte, error) {
	if f.client == nil {
		return nil, ErrDetached
	}
	return f.client.DownloadFile(ctx, f.FileToken)
}

// DownloadFile fetches a file by its download token.
func (c *Client) DownloadFile(ctx context.Context, token string) ([]byte, error) {
	q := url.Values{}
	q.Set("token", token)
	return c.raw(ctx, &Request{Method: http.MethodGet, Path: "utils/download", Query: q})
}

// LogFile returns a download handle for the full server log.
func (c *Client) LogFile(ctx context.Context) (*File, error) {
	f := &File{client: c}
	if err := c.get(ctx, "debug/log", f); err != nil {
		return nil, err
	}
	return f, nil
}
