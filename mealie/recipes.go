package mealie

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ImageSize selects one of the stored renditions of a recipe image.
type ImageSize string

const (
	ImageOriginal    ImageSize = "original.webp"
	ImageMinOriginal ImageSize = "min-original.webp"
	ImageTiny        ImageSize = "tiny-original.webp"
)

// Recipe is a full recipe document.
type Recipe struct {
	client *Client

	ID                 int                 `json:"id,omitempty"`
	Name               string              `json:"name"`
	Slug               string              `json:"slug,omitempty"`
	Description        string              `json:"description,omitempty"`
	Image              string              `json:"image,omitempty"`
	RecipeYield        string              `json:"recipe_yield,omitempty"`
	RecipeIngredient   []string            `json:"recipe_ingredient,omitempty"`
	RecipeInstructions []map[string]string `json:"recipe_instructions,omitempty"`
	Tags               []string            `json:"tags,omitempty"`
	RecipeCategory     []string            `json:"recipe_category,omitempty"`
	Notes              []map[string]string `json:"notes,omitempty"`
	OrgURL             string              `json:"org_url,omitempty"`
	Rating             int                 `json:"rating,omitempty"`
	Extras             map[string]string   `json:"extras,omitempty"`
	Settings           map[string]bool     `json:"settings,omitempty"`
	TotalTime          string              `json:"total_time,omitempty"`
	PrepTime           string              `json:"prep_time,omitempty"`
	PerformTime        string              `json:"perform_time,omitempty"`
	Nutrition          map[string]string   `json:"nutrition,omitempty"`
	DateAdded          string              `json:"date_added,omitempty"`
	DateUpdated        string              `json:"date_updated,omitempty"`
	Tools              []any               `json:"tools,omitempty"`
	Assets             []*RecipeAsset      `json:"assets,omitempty"`
	Comments           []*RecipeComment    `json:"comments,omitempty"`
}

// RecipeAsset is a file attached to a recipe.
type RecipeAsset struct {
	client     *Client
	recipeSlug string

	Name     string `json:"name,omitempty"`
	Icon     string `json:"icon,omitempty"`
	FileName string `json:"file_name"`
}

// RecipeComment is a user comment on a recipe.
type RecipeComment struct {
	client *Client

	ID         int    `json:"id,omitempty"`
	RecipeSlug string `json:"recipe_slug,omitempty"`
	Text       string `json:"text"`
	DateAdded  string `json:"date_added,omitempty"`
}

// NewRecipe builds an unsaved recipe bound to c.
func (c *Client) NewRecipe(name string) *Recipe {
	return &Recipe{client: c, Name: name}
}

// Slugify derives a recipe slug from a name: only ASCII letters and spaces
// are kept, lower-cased, with spaces turned into hyphens.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Key returns the recipe's slug, deriving it from the name when the server
// has not assigned one.
func (r *Recipe) Key() string {
	if r.Slug != "" {
		return r.Slug
	}
	return Slugify(r.Name)
}

func (r *Recipe) String() string {
	return fmt.Sprintf("<Recipe %q>", r.Key())
}

// Added parses DateAdded.
func (r *Recipe) Added() time.Time { return ParseDate(r.DateAdded) }

// Updated parses DateUpdated.
func (r *Recipe) Updated() time.Time { return ParseDate(r.DateUpdated) }

func (r *Recipe) attach(c *Client) {
	r.client = c
	for _, a := range r.Assets {
		if a != nil {
			a.client = c
			a.recipeSlug = r.Key()
		}
	}
	for _, cm := range r.Comments {
		if cm != nil {
			cm.client = c
			if cm.RecipeSlug == "" {
				cm.RecipeSlug = r.Key()
			}
		}
	}
}

// merge copies every field of fresh onto r.
func (r *Recipe) merge(fresh *Recipe) {
	r.ID = fresh.ID
	r.Name = fresh.Name
	r.Slug = fresh.Slug
	r.Description = fresh.Description
	r.Image = fresh.Image
	r.RecipeYield = fresh.RecipeYield
	r.RecipeIngredient = fresh.RecipeIngredient
	r.RecipeInstructions = fresh.RecipeInstructions
	r.Tags = fresh.Tags
	r.RecipeCategory = fresh.RecipeCategory
	r.Notes = fresh.Notes
	r.OrgURL = fresh.OrgURL
	r.Rating = fresh.Rating
	r.Extras = fresh.Extras
	r.Settings = fresh.Settings
	r.TotalTime = fresh.TotalTime
	r.PrepTime = fresh.PrepTime
	r.PerformTime = fresh.PerformTime
	r.Nutrition = fresh.Nutrition
	r.DateAdded = fresh.DateAdded
	r.DateUpdated = fresh.DateUpdated
	r.Tools = fresh.Tools
	r.Assets = fresh.Assets
	r.Comments = fresh.Comments
}

func (c *Client) hydrateRecipe(payload any) (*Recipe, error) {
	r := &Recipe{}
	if err := hydrate(payload, r); err != nil {
		return nil, err
	}
	// The server's "orgURL" normalizes to "org_u_r_l".
	if m, ok := payload.(map[string]any); ok && r.OrgURL == "" {
		if v, ok := m["org_u_r_l"].(string); ok {
			r.OrgURL = v
		}
	}
	r.attach(c)
	return r, nil
}

func (c *Client) recipeRequest(ctx context.Context, req *Request) (*Recipe, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.hydrateRecipe(resp.Payload)
}

func (c *Client) recipeList(ctx context.Context, path string, query url.Values) ([]*Recipe, error) {
	req := &Request{Method: http.MethodGet, Path: path, Query: query}
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	items, ok := resp.Payload.([]any)
	if !ok {
		return nil, &APIError{
			Kind:       KindUnexpectedContentType,
			StatusCode: resp.StatusCode,
			Method:     req.method(),
			Path:       c.requestPath(req),
			Message:    fmt.Sprintf("expected a list of recipes, got %s %T", resp.Kind, resp.Payload),
		}
	}
	out := make([]*Recipe, 0, len(items))
	for _, item := range items {
		r, err := c.hydrateRecipe(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// GetRecipe fetches a recipe by slug.
func (c *Client) GetRecipe(ctx context.Context, slug string) (*Recipe, error) {
	return c.recipeRequest(ctx, &Request{Method: http.MethodGet, Path: "recipes/" + seg(slug)})
}

// ListRecipes returns recipe summaries; a zero limit lets the server decide.
func (c *Client) ListRecipes(ctx context.Context, start, limit int) ([]*Recipe, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.recipeList(ctx, "recipes/summary", q)
}

func (c *Client) UntaggedRecipes(ctx context.Context) ([]*Recipe, error) {
	return c.recipeList(ctx, "recipes/summary/untagged", nil)
}

func (c *Client) UncategorizedRecipes(ctx context.Context) ([]*Recipe, error) {
	return c.recipeList(ctx, "recipes/summary/uncategorized", nil)
}

// CreateRecipe stores r and returns the slug the server assigned.
func (c *Client) CreateRecipe(ctx context.Context, r *Recipe) (string, error) {
	var slug string
	if err := c.sendJSON(ctx, http.MethodPost, "recipes/create", r, &slug); err != nil {
		return "", err
	}
	return slug, nil
}

// CreateRecipeFromURL asks the server to scrape a recipe from a web page.
func (c *Client) CreateRecipeFromURL(ctx context.Context, pageURL string) (string, error) {
	var slug string
	if err := c.sendJSON(ctx, http.MethodPost, "recipes/create-url", map[string]string{"url": pageURL}, &slug); err != nil {
		return "", err
	}
	return slug, nil
}

// CreateRecipeFromZip imports a recipe archive produced by RecipeZip.
func (c *Client) CreateRecipeFromZip(ctx context.Context, archive []byte) (string, error) {
	var slug string
	req := &Request{
		Method: http.MethodPost,
		Path:   "recipes/create-from-zip",
		Body:   MultipartBody{Files: []FilePart{{Field: "archive", FileName: "recipe.zip", Data: archive}}},
	}
	if err := c.do(ctx, req, &slug); err != nil {
		return "", err
	}
	return slug, nil
}

// UpdateRecipe replaces the stored recipe with r.
func (c *Client) UpdateRecipe(ctx context.Context, r *Recipe) (*Recipe, error) {
	return c.recipeRequest(ctx, &Request{Method: http.MethodPut, Path: "recipes/" + seg(r.Key()), Body: JSONBody{Value: r}})
}

// PatchRecipe sends only the fields set on r.
func (c *Client) PatchRecipe(ctx context.Context, r *Recipe) (*Recipe, error) {
	return c.recipeRequest(ctx, &Request{Method: http.MethodPatch, Path: "recipes/" + seg(r.Key()), Body: JSONBody{Value: r}})
}

func (c *Client) DeleteRecipe(ctx context.Context, slug string) error {
	return c.delete(ctx, "recipes/"+seg(slug))
}

// RecipeImage downloads one rendition of a recipe's image.
func (c *Client) RecipeImage(ctx context.Context, slug string, size ImageSize) ([]byte, error) {
	if size == "" {
		size = ImageOriginal
	}
	return c.raw(ctx, &Request{Method: http.MethodGet, Path: "media/recipes/" + seg(slug) + "/images/" + string(size)})
}

// UpdateRecipeImage uploads a new image; extension is e.g. "jpg".
func (c *Client) UpdateRecipeImage(ctx context.Context, slug string, image []byte, extension string) error {
	req := &Request{
		Method: http.MethodPut,
		Path:   "recipes/" + seg(slug) + "/image",
		Body: MultipartBody{
			Fields: map[string]string{"extension": extension},
			Files:  []FilePart{{Field: "image", FileName: "image." + extension, Data: image}},
		},
	}
	_, err := c.Send(ctx, req)
	return err
}

// UpdateRecipeImageFromURL makes the server fetch the image itself.
func (c *Client) UpdateRecipeImageFromURL(ctx context.Context, slug, imageURL string) error {
	return c.sendJSON(ctx, http.MethodPost, "recipes/"+seg(slug)+"/image", map[string]string{"url": imageURL}, nil)
}

// RecipeAsset downloads an asset file.
func (c *Client) RecipeAsset(ctx context.Context, slug, fileName string) ([]byte, error) {
	return c.raw(ctx, &Request{Method: http.MethodGet, Path: "media/recipes/" + seg(slug) + "/assets/" + seg(fileName)})
}

// UploadRecipeAsset attaches a file to a recipe.
func (c *Client) UploadRecipeAsset(ctx context.Context, slug, name, icon, extension string, data []byte) (*RecipeAsset, error) {
	req := &Request{
		Method: http.MethodPost,
		Path:   "recipes/" + seg(slug) + "/assets",
		Body: MultipartBody{
			Fields: map[string]string{"name": name, "icon": icon, "extension": extension},
			Files:  []FilePart{{Field: "file", FileName: name + "." + extension, Data: data}},
		},
	}
	asset := &RecipeAsset{}
	if err := c.do(ctx, req, asset); err != nil {
		return nil, err
	}
	asset.client = c
	asset.recipeSlug = slug
	return asset, nil
}

// RecipeZip downloads a recipe archive.
func (c *Client) RecipeZip(ctx context.Context, slug string) ([]byte, error) {
	return c.raw(ctx, &Request{Method: http.MethodGet, Path: "recipes/" + seg(slug) + "/zip"})
}

func (c *Client) CreateRecipeComment(ctx context.Context, slug, text string) (*RecipeComment, error) {
	cm := &RecipeComment{}
	if err := c.sendJSON(ctx, http.MethodPost, "recipes/"+seg(slug)+"/comments", map[string]string{"text": text}, cm); err != nil {
		return nil, err
	}
	cm.client = c
	if cm.RecipeSlug == "" {
		cm.RecipeSlug = slug
	}
	return cm, nil
}

func (c *Client) UpdateRecipeComment(ctx context.Context, slug string, id int, text string) (*RecipeComment, error) {
	cm := &RecipeComment{}
	path := fmt.Sprintf("recipes/%s/comments/%d", seg(slug), id)
	if err := c.sendJSON(ctx, http.MethodPut, path, map[string]string{"text": text}, cm); err != nil {
		return nil, err
	}
	cm.client = c
	if cm.RecipeSlug == "" {
		cm.RecipeSlug = slug
	}
	return cm, nil
}

func (c *Client) DeleteRecipeComment(ctx context.Context, slug string, id int) error {
	return c.delete(ctx, fmt.Sprintf("recipes/%s/comments/%d", seg(slug), id))
}

// Create stores the recipe on the server and records the assigned slug.
func (r *Recipe) Create(ctx context.Context) error {
	if r.client == nil {
		return ErrDetached
	}
	slug, err := r.client.CreateRecipe(ctx, r)
	if err != nil {
		return err
	}
	r.Slug = slug
	return nil
}

func (r *Recipe) Delete(ctx context.Context) error {
	if r.client == nil {
		return ErrDetached
	}
	return r.client.DeleteRecipe(ctx, r.Key())
}

// PushChanges patches the server copy with r's fields.
func (r *Recipe) PushChanges(ctx context.Context) (*Recipe, error) {
	if r.client == nil {
		return nil, ErrDetached
	}
	return r.client.PatchRecipe(ctx, r)
}

// Update replaces the server copy with r.
func (r *Recipe) Update(ctx context.Context) (*Recipe, error) {
	if r.client == nil {
		return nil, ErrDetached
	}
	return r.client.UpdateRecipe(ctx, r)
}

// Refresh reloads the recipe from the server in place.
func (r *Recipe) Refresh(ctx context.Context) error {
	if r.client == nil {
		return ErrDetached
	}
	fresh, err := r.client.GetRecipe(ctx, r.Key())
	if err != nil {
		return err
	}
	r.merge(fresh)
	return nil
}

// ImageData downloads the recipe image. It returns nil when the recipe has
// no image.
func (r *Recipe) ImageData(ctx context.Context, size ImageSize) ([]byte, error) {
	if r.client == nil {
		return nil, ErrDetached
	}
	if r.Image == "" {
		return nil, nil
	}
	return r.client.RecipeImage(ctx, r.Key(), size)
}

func (r *Recipe) Asset(ctx context.Context, fileName string) ([]byte, error) {
	if r.client == nil {
		return nil, ErrDetached
	}
	return r.client.RecipeAsset(ctx, r.Key(), fileName)
}

// Zip downloads the recipe archive and opens it.
func (r *Recipe) Zip(ctx context.Context) (*zip.Reader, error) {
	if r.client == nil {
		return nil, ErrDetached
	}
	data, err := r.client.RecipeZip(ctx, r.Key())
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open recipe zip: %w", err)
	}
	return zr, nil
}

// Content downloads the asset file.
func (a *RecipeAsset) Content(ctx context.Context) ([]byte, error) {
	if a.client == nil {
		return nil, ErrDetached
	}
	return a.client.RecipeAsset(ctx, a.recipeSlug, a.FileName)
}

func (cm *RecipeComment) Update(ctx context.Context, text string) (*RecipeComment, error) {
	if cm.client == nil {
		return nil, ErrDetached
	}
	return cm.client.UpdateRecipeComment(ctx, cm.RecipeSlug, cm.ID, text)
}

func (cm *RecipeComment) Delete(ctx context.Context) error {
	if cm.client == nil {
		return ErrDetached
	}
	return cm.client.DeleteRecipeComment(ctx, cm.RecipeSlug, cm.ID)
}
