package mealie

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsclarke/mealie/internal/mealietest"
)

func authedClient(t *testing.T) (*Client, *mealietest.Server) {
	t.Helper()
	return newTestClient(t, WithAPIKey(mealietest.APIKey))
}

func TestGetRecipeHydratesNormalizedKeys(t *testing.T) {
	c, _ := authedClient(t)

	r, err := c.GetRecipe(context.Background(), "pasta-carbonara")
	require.NoError(t, err)

	assert.Equal(t, "Pasta Carbonara", r.Name)
	assert.Equal(t, "2 servings", r.RecipeYield)
	assert.Equal(t, []string{"200g spaghetti", "2 eggs"}, r.RecipeIngredient)
	assert.Equal(t, "https://example.com/carbonara", r.OrgURL)
	assert.Equal(t, 2021, r.Added().Year())
	assert.Equal(t, "pasta-carbonara", r.Key())
}

func TestGetRecipeNotFound(t *testing.T) {
	c, _ := authedClient(t)

	_, err := c.GetRecipe(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, KindUnknown, apiErr.Kind)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestRecipeLifecycle(t *testing.T) {
	ctx := context.Background()
	c, srv := authedClient(t)

	r := c.NewRecipe("Tomato Soup")
	r.RecipeIngredient = []string{"tomatoes"}
	require.NoError(t, r.Create(ctx))
	assert.Equal(t, "tomato-soup", r.Slug)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.LastRequest().Body, &sent))
	assert.Equal(t, "Tomato Soup", sent["name"])
	assert.Contains(t, sent, "recipe_ingredient")

	r.Description = "warming"
	updated, err := r.PushChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, "warming", updated.Description)
	assert.Equal(t, http.MethodPatch, srv.LastRequest().Method)

	stale, err := c.GetRecipe(ctx, "tomato-soup")
	require.NoError(t, err)
	_, err = c.UpdateRecipe(ctx, &Recipe{Name: "Tomato Soup", Slug: "tomato-soup", Rating: 5})
	require.NoError(t, err)
	require.NoError(t, stale.Refresh(ctx))
	assert.Equal(t, 5, stale.Rating)

	list, err := c.ListRecipes(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "limit=10&start=0", srv.LastRequest().RawQuery)

	require.NoError(t, r.Delete(ctx))
	_, err = c.GetRecipe(ctx, "tomato-soup")
	assert.Error(t, err)
}

func TestCreateRecipeMissingName(t *testing.T) {
	c, _ := authedClient(t)

	_, err := c.CreateRecipe(context.Background(), &Recipe{})
	assert.ErrorIs(t, err, ErrParameterMissing)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"body", "name"}, apiErr.Params)
}

func TestCreateRecipeFromURL(t *testing.T) {
	c, _ := authedClient(t)

	slug, err := c.CreateRecipeFromURL(context.Background(), "https://example.com/recipes/Lemon-Tart/")
	require.NoError(t, err)
	assert.Equal(t, "lemon-tart", slug)
}

func TestRecipeMedia(t *testing.T) {
	ctx := context.Background()
	c, srv := authedClient(t)

	r, err := c.GetRecipe(ctx, "pasta-carbonara")
	require.NoError(t, err)

	img, err := r.ImageData(ctx, ImageTiny)
	require.NoError(t, err)
	assert.Equal(t, "RIFFtiny-original.webp", string(img))
	assert.Equal(t, "/api/media/recipes/pasta-carbonara/images/tiny-original.webp", srv.LastRequest().Path)

	zr, err := r.Zip(ctx)
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	f, err := zr.File[0].Open()
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	data, _ := io.ReadAll(f)
	assert.Contains(t, string(data), "Pasta Carbonara")
}

func TestRecipeComments(t *testing.T) {
	ctx := context.Background()
	c, _ := authedClient(t)

	cm, err := c.CreateRecipeComment(ctx, "pasta-carbonara", "Delicious")
	require.NoError(t, err)
	assert.Equal(t, "Delicious", cm.Text)
	assert.Equal(t, "pasta-carbonara", cm.RecipeSlug)

	r, err := c.GetRecipe(ctx, "pasta-carbonara")
	require.NoError(t, err)
	require.Len(t, r.Comments, 1)
	assert.Equal(t, "Delicious", r.Comments[0].Text)
}

func TestDetachedModels(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, (&Recipe{Name: "x"}).Create(ctx), ErrDetached)
	assert.ErrorIs(t, (&Backup{Name: "b"}).Delete(ctx), ErrDetached)
	_, err := (&User{}).Favorites(ctx)
	assert.ErrorIs(t, err, ErrDetached)
}

func TestModelPreconditions(t *testing.T) {
	ctx := context.Background()
	c, srv := authedClient(t)

	_, err := c.NewGroup("Home").Update(ctx)
	assert.ErrorIs(t, err, ErrMissingID)

	err = c.NewUser("u", "U", "u@example.test", "Home", "").UpdatePassword(ctx, "new")
	assert.ErrorIs(t, err, ErrMissingPassword)

	_, err = (&UserSignup{client: c, Name: "guest"}).Signup(ctx, &User{})
	assert.ErrorIs(t, err, ErrMissingSignupToken)

	assert.Empty(t, srv.Requests())
}

func TestSlugRules(t *testing.T) {
	assert.Equal(t, "pasta-carbonara", Slugify("Pasta Carbonara!"))
	assert.Equal(t, "mom-s-pie", (&Meal{Name: "Mom's Pie"}).Key())
	assert.Equal(t, "given", (&Meal{Name: "x", Slug: "given"}).Key())
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	c, _ := authedClient(t)

	tag, err := c.CreateTag(ctx, "Quick Meals")
	require.NoError(t, err)
	assert.Equal(t, "quick-meals", tag.Slug)

	tags, err := c.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Dinner", tags[0].Name)
}

func TestShoppingListToggle(t *testing.T) {
	ctx := context.Background()
	c, srv := authedClient(t)

	list, err := c.GetShoppingList(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())

	updated, err := list.ToggleChecked(ctx, 0)
	require.NoError(t, err)
	assert.True(t, updated.Items[0].Checked)
	assert.Equal(t, http.MethodPut, srv.LastRequest().Method)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.LastRequest().Body, &sent))
	assert.NotContains(t, sent, "id")

	_, err = list.ToggleChecked(ctx, 5)
	assert.Error(t, err)
}

func TestShoppingListToggleLeavesStateOnFailure(t *testing.T) {
	ctx := context.Background()
	c, srv := authedClient(t)

	_, err := (&ShoppingList{ID: 1, Items: []*Ingredient{{Text: "eggs"}}}).ToggleChecked(ctx, 0)
	assert.ErrorIs(t, err, ErrDetached)

	unsaved := c.NewShoppingList("Weekly", "Home")
	unsaved.Items = []*Ingredient{{Text: "eggs"}}
	_, err = unsaved.ToggleChecked(ctx, 0)
	assert.ErrorIs(t, err, ErrMissingID)
	assert.False(t, unsaved.Items[0].Checked)

	holes := &ShoppingList{client: c, ID: 1, Items: []*Ingredient{nil}}
	_, err = holes.ToggleChecked(ctx, 0)
	assert.Error(t, err)
	assert.Empty(t, srv.Requests())

	list, err := c.GetShoppingList(ctx, 1)
	require.NoError(t, err)
	c.Logout()
	_, err = list.ToggleChecked(ctx, 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.False(t, list.Items[0].Checked)
}

func TestListRecipesRejectsNonList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, WithAPIKey("k"))
	require.NoError(t, err)

	recipes, err := c.ListRecipes(context.Background(), 0, 10)
	assert.Nil(t, recipes)
	assert.ErrorIs(t, err, ErrUnexpectedContentType)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/api/recipes/summary", apiErr.Path)
}

func TestTodaysMeal(t *testing.T) {
	c, _ := authedClient(t)

	slug, err := c.TodaysMeal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pasta-carbonara", slug)
}

func TestBackups(t *testing.T) {
	ctx := context.Background()
	c, srv := authedClient(t)

	name, err := c.CreateBackup(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, "nightly_export.zip", name)

	backups, err := c.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, 2021, backups[0].Created().Year())

	data, err := backups[0].Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PK-backup", string(data))
	assert.Equal(t, "/api/utils/download", srv.LastRequest().Path)
	assert.Equal(t, "token=file-1", srv.LastRequest().RawQuery)

	require.NoError(t, backups[1].Delete(ctx))
	backups, err = c.Backups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestDebugEndpoints(t *testing.T) {
	ctx := context.Background()
	c, _ := authedClient(t)

	stats, err := c.DebugStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecipes)
	assert.Equal(t, 1, stats.UncategorizedRecipes)

	log, err := c.DebugLog(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "INFO line 1\nINFO line 2", log)
}

func TestCreateAPIKey(t *testing.T) {
	c, _ := authedClient(t)

	key, err := c.CreateAPIKey(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, "key-for-cli", key.Token)
	assert.Equal(t, "cli", key.Name)
}

func TestCurrentUserTokensAttached(t *testing.T) {
	c, _ := authedClient(t)

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	require.Len(t, u.Tokens, 1)
	assert.Equal(t, "cli", u.Tokens[0].Name)

	body, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "tokens")
}

func TestDoRejectsNonJSONPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("bytes"))
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, WithAPIKey("k"))
	require.NoError(t, err)

	_, err = c.DebugVersion(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedContentType)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/api/debug/version", apiErr.Path)
}
