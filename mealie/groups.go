package mealie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Group is a set of users sharing meal plans and shopping lists.
type Group struct {
	client *Client

	ID            int             `json:"id,omitempty"`
	Name          string          `json:"name"`
	Categories    []*Organizer    `json:"categories,omitempty"`
	WebhookURLs   []string        `json:"webhook_urls,omitempty"`
	WebhookTime   string          `json:"webhook_time,omitempty"`
	WebhookEnable bool            `json:"webhook_enable,omitempty"`
	Users         []*User         `json:"users,omitempty"`
	MealPlans     []*MealPlan     `json:"mealplans,omitempty"`
	ShoppingLists []*ShoppingList `json:"shopping_lists,omitempty"`
}

// NewGroup builds an unsaved group bound to c.
func (c *Client) NewGroup(name string) *Group {
	return &Group{client: c, Name: name}
}

// MarshalJSON sends only the editable group settings.
func (g *Group) MarshalJSON() ([]byte, error) {
	body := map[string]any{"name": g.Name}
	if g.WebhookURLs != nil {
		body["webhook_urls"] = g.WebhookURLs
	}
	if g.WebhookTime != "" {
		body["webhook_time"] = g.WebhookTime
	}
	body["webhook_enable"] = g.WebhookEnable
	return json.Marshal(body)
}

func (g *Group) String() string {
	return fmt.Sprintf("<Group %s>", g.Name)
}

func (g *Group) attach(c *Client) {
	g.client = c
	for _, o := range g.Categories {
		if o != nil {
			o.client = c
			o.base = categoriesPath
		}
	}
	for _, u := range g.Users {
		if u != nil {
			u.attach(c)
		}
	}
	for _, p := range g.MealPlans {
		if p != nil {
			p.attach(c)
		}
	}
	for _, l := range g.ShoppingLists {
		if l != nil {
			l.client = c
		}
	}
}

func (c *Client) groupRequest(ctx context.Context, method, path string, body any) (*Group, error) {
	g := &Group{}
	if err := c.sendJSON(ctx, method, path, body, g); err != nil {
		return nil, err
	}
	g.attach(c)
	return g, nil
}

func (c *Client) Groups(ctx context.Context) ([]*Group, error) {
	var out []*Group
	if err := c.get(ctx, "groups", &out); err != nil {
		return nil, err
	}
	for _, g := range out {
		g.attach(c)
	}
	return out, nil
}

// CurrentGroup returns the group of the authenticated user.
func (c *Client) CurrentGroup(ctx context.Context) (*Group, error) {
	return c.groupRequest(ctx, http.MethodGet, "groups/self", nil)
}

func (c *Client) CreateGroup(ctx context.Context, g *Group) (*Group, error) {
	return c.groupRequest(ctx, http.MethodPost, "groups", g)
}

func (c *Client) UpdateGroup(ctx context.Context, id int, g *Group) (*Group, error) {
	return c.groupRequest(ctx, http.MethodPut, fmt.Sprintf("groups/%d", id), g)
}

func (c *Client) DeleteGroup(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("groups/%d", id))
}

func (g *Group) Create(ctx context.Context) (*Group, error) {
	if g.client == nil {
		return nil, ErrDetached
	}
	return g.client.CreateGroup(ctx, g)
}

func (g *Group) Update(ctx context.Context) (*Group, error) {
	if g.client == nil {
		return nil, ErrDetached
	}
	if g.ID == 0 {
		return nil, ErrMissingID
	}
	return g.client.UpdateGroup(ctx, g.ID, g)
}

func (g *Group) Delete(ctx context.Context) error {
	if g.client == nil {
		return ErrDetached
	}
	if g.ID == 0 {
		return ErrMissingID
	}
	return g.client.DeleteGroup(ctx, g.ID)
}
