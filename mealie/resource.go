package mealie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// do sends req and hydrates a JSON payload into out when out is non-nil.
func (c *Client) do(ctx context.Context, req *Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if resp.Kind != ContentJSON {
		return &APIError{
			Kind:       KindUnexpectedContentType,
			StatusCode: resp.StatusCode,
			Method:     req.method(),
			Path:       c.requestPath(req),
			Message:    fmt.Sprintf("expected json, got %s", resp.Kind),
		}
	}
	return hydrate(resp.Payload, out)
}

// raw sends req and returns the payload as bytes, whatever its kind.
func (c *Client) raw(ctx context.Context, req *Request) ([]byte, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	switch p := resp.Payload.(type) {
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	case nil:
		return nil, nil
	default:
		return nil, &APIError{
			Kind:       KindUnexpectedContentType,
			StatusCode: resp.StatusCode,
			Method:     req.method(),
			Path:       c.requestPath(req),
			Message:    fmt.Sprintf("expected binary payload, got %s", resp.Kind),
		}
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, &Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) getQuery(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	req := &Request{Method: method, Path: path}
	if body != nil {
		req.Body = JSONBody{Value: body}
	}
	return c.do(ctx, req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
}

// requestPath is the URL path Send uses for req, as stamped on its errors.
func (c *Client) requestPath(req *Request) string {
	return c.endpoint(req.apiPath(), nil).Path
}

// seg escapes a single path segment.
func seg(s string) string {
	return url.PathEscape(s)
}
