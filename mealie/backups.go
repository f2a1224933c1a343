package mealie

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Backup is a server-side database export.
type Backup struct {
	client *Client

	Name string `json:"name"`
	Date string `json:"date,omitempty"`
}

func (b *Backup) String() string {
	return fmt.Sprintf("<Backup %s>", b.Name)
}

// Created parses Date.
func (b *Backup) Created() time.Time { return ParseDate(b.Date) }

// Backups lists the available backup archives.
func (c *Client) Backups(ctx context.Context) ([]*Backup, error) {
	var reply struct {
		Imports []*Backup `json:"imports"`
	}
	if err := c.get(ctx, "backups/available", &reply); err != nil {
		return nil, err
	}
	for _, b := range reply.Imports {
		b.client = c
	}
	return reply.Imports, nil
}

// CreateBackup exports the database and returns the new archive's name.
// An empty tag lets the server pick the name.
func (c *Client) CreateBackup(ctx context.Context, tag string) (string, error) {
	body := map[string]any{"tag": tag}
	var name string
	if err := c.sendJSON(ctx, http.MethodPost, "backups/export/database", body, &name); err != nil {
		return "", err
	}
	return name, nil
}

// DownloadBackup fetches a backup archive. The server first issues a file
// token which is then exchanged for the bytes.
func (c *Client) DownloadBackup(ctx context.Context, name string) ([]byte, error) {
	f := &File{client: c}
	if err := c.get(ctx, "backups/"+seg(name)+"/download", f); err != nil {
		return nil, err
	}
	return f.Download(ctx)
}

func (c *Client) DeleteBackup(ctx context.Context, name string) error {
	return c.delete(ctx, "backups/"+seg(name)+"/delete")
}

func (b *Backup) Download(ctx context.Context) ([]byte, error) {
	if b.client == nil {
		return nil, ErrDetached
	}
	return b.client.DownloadBackup(ctx, b.Name)
}

func (b *Backup) Delete(ctx context.Context) error {
	if b.client == nil {
		return ErrDetached
	}
	return b.client.DeleteBackup(ctx, b.Name)
}
