package mealie

import (
	"context"
	"fmt"
	"net/http"
)

const (
	tagsPath       = "recipes/tags"
	categoriesPath = "categories"
)

// Organizer is a recipe tag or category. Both share one shape and differ
// only in the endpoint they live under.
type Organizer struct {
	client *Client
	base   string

	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func (o *Organizer) String() string {
	return fmt.Sprintf("<Organizer %s/%s>", o.base, o.Slug)
}

func (c *Client) organizers(ctx context.Context, path, base string) ([]*Organizer, error) {
	var out []*Organizer
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	for _, o := range out {
		o.client = c
		o.base = base
	}
	return out, nil
}

func (c *Client) organizer(ctx context.Context, method, path, base string, body any) (*Organizer, error) {
	o := &Organizer{}
	if err := c.sendJSON(ctx, method, path, body, o); err != nil {
		return nil, err
	}
	o.client = c
	o.base = base
	return o, nil
}

func (c *Client) organizerRecipes(ctx context.Context, base, slug string) ([]*Recipe, error) {
	var reply struct {
		Recipes []map[string]any `json:"recipes"`
	}
	if err := c.get(ctx, base+"/"+seg(slug), &reply); err != nil {
		return nil, err
	}
	out := make([]*Recipe, 0, len(reply.Recipes))
	for _, item := range reply.Recipes {
		r, err := c.hydrateRecipe(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Tags lists every tag.
func (c *Client) Tags(ctx context.Context) ([]*Organizer, error) {
	return c.organizers(ctx, tagsPath, tagsPath)
}

// EmptyTags lists tags with no recipes.
func (c *Client) EmptyTags(ctx context.Context) ([]*Organizer, error) {
	return c.organizers(ctx, tagsPath+"/empty", tagsPath)
}

func (c *Client) CreateTag(ctx context.Context, name string) (*Organizer, error) {
	return c.organizer(ctx, http.MethodPost, tagsPath, tagsPath, map[string]string{"name": name})
}

// TagRecipes lists the recipes carrying a tag.
func (c *Client) TagRecipes(ctx context.Context, slug string) ([]*Recipe, error) {
	return c.organizerRecipes(ctx, tagsPath, slug)
}

// UpdateTag renames a tag.
func (c *Client) UpdateTag(ctx context.Context, slug, name string) (*Organizer, error) {
	return c.organizer(ctx, http.MethodPut, tagsPath+"/"+seg(slug), tagsPath, map[string]string{"name": name})
}

func (c *Client) DeleteTag(ctx context.Context, slug string) error {
	return c.delete(ctx, tagsPath+"/"+seg(slug))
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]*Organizer, error) {
	return c.organizers(ctx, categoriesPath, categoriesPath)
}

// EmptyCategories lists categories with no recipes.
func (c *Client) EmptyCategories(ctx context.Context) ([]*Organizer, error) {
	return c.organizers(ctx, categoriesPath+"/empty", categoriesPath)
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*Organizer, error) {
	return c.organizer(ctx, http.MethodPost, categoriesPath, categoriesPath, map[string]string{"name": name})
}

func (c *Client) CategoryRecipes(ctx context.Context, slug string) ([]*Recipe, error) {
	return c.organizerRecipes(ctx, categoriesPath, slug)
}

func (c *Client) UpdateCategory(ctx context.Context, slug, name string) (*Organizer, error) {
	return c.organizer(ctx, http.MethodPut, categoriesPath+"/"+seg(slug), categoriesPath, map[string]string{"name": name})
}

func (c *Client) DeleteCategory(ctx context.Context, slug string) error {
	return c.delete(ctx, categoriesPath+"/"+seg(slug))
}

// Recipes lists the recipes filed under the organizer.
func (o *Organizer) Recipes(ctx context.Context) ([]*Recipe, error) {
	if o.client == nil {
		return nil, ErrDetached
	}
	return o.client.organizerRecipes(ctx, o.base, o.Slug)
}

// Rename changes the organizer's name and adopts the server's reply.
func (o *Organizer) Rename(ctx context.Context, name string) error {
	if o.client == nil {
		return ErrDetached
	}
	fresh, err := o.client.organizer(ctx, http.MethodPut, o.base+"/"+seg(o.Slug), o.base, map[string]string{"name": name})
	if err != nil {
		return err
	}
	o.ID, o.Name, o.Slug = fresh.ID, fresh.Name, fresh.Slug
	return nil
}

func (o *Organizer) Delete(ctx context.Context) error {
	if o.client == nil {
		return ErrDetached
	}
	return o.client.delete(ctx, o.base+"/"+seg(o.Slug))
}
