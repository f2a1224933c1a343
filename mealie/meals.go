package mealie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// FormatDate renders t the way the server expects plain dates.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// urlSlug lower-cases s, keeps letters and digits, and joins every other
// run of characters with a single hyphen.
func urlSlug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// Meal is one entry of a meal plan.
type Meal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug,omitempty"`
}

// Key returns the meal's slug, derived from its name when unset.
func (m *Meal) Key() string {
	if m.Slug != "" {
		return m.Slug
	}
	return urlSlug(m.Name)
}

func (m *Meal) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"slug":        m.Key(),
	})
}

// MealPlanDay groups the meals planned for one date.
type MealPlanDay struct {
	Date  string  `json:"date"`
	Meals []*Meal `json:"meals"`
}

// Day parses Date.
func (d *MealPlanDay) Day() time.Time { return ParseDate(d.Date) }

// MealPlan covers a range of dates for a group.
type MealPlan struct {
	client *Client

	ID           int            `json:"id,omitempty"`
	Group        string         `json:"group"`
	StartDate    string         `json:"start_date"`
	EndDate      string         `json:"end_date"`
	Meals        []*Meal        `json:"meals,omitempty"`
	PlanDays     []*MealPlanDay `json:"plan_days,omitempty"`
	ShoppingList int            `json:"shopping_list,omitempty"`
}

// NewMealPlan builds a plan bound to c for the given date range.
func (c *Client) NewMealPlan(group string, start, end time.Time) *MealPlan {
	return &MealPlan{client: c, Group: group, StartDate: FormatDate(start), EndDate: FormatDate(end)}
}

// MarshalJSON omits the server-assigned id and shopping list and normalizes
// dates to their plain form.
func (p *MealPlan) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"group":      p.Group,
		"start_date": plainDate(p.StartDate),
		"end_date":   plainDate(p.EndDate),
	}
	if p.Meals != nil {
		body["meals"] = p.Meals
	}
	if p.PlanDays != nil {
		days := make([]map[string]any, 0, len(p.PlanDays))
		for _, d := range p.PlanDays {
			days = append(days, map[string]any{"date": plainDate(d.Date), "meals": d.Meals})
		}
		body["plan_days"] = days
	}
	return json.Marshal(body)
}

func plainDate(value string) string {
	if t := ParseDate(value); !t.IsZero() {
		return FormatDate(t)
	}
	return value
}

func (p *MealPlan) String() string {
	return fmt.Sprintf("<MealPlan %d %s..%s>", p.ID, p.StartDate, p.EndDate)
}

func (p *MealPlan) Start() time.Time { return ParseDate(p.StartDate) }
func (p *MealPlan) End() time.Time { return ParseDate(p.EndDate) }

func (p *MealPlan) attach(c *Client) { p.client = c }

func (c *Client) mealPlanRequest(ctx context.Context, method, path string, body any) (*MealPlan, error) {
	p := &MealPlan{}
	if err := c.sendJSON(ctx, method, path, body, p); err != nil {
		return nil, err
	}
	p.attach(c)
	return p, nil
}

// MealPlans lists every meal plan.
func (c *Client) MealPlans(ctx context.Context) ([]*MealPlan, error) {
	var out []*MealPlan
	if err := c.get(ctx, "meal-plans/all", &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		p.attach(c)
	}
	return out, nil
}

func (c *Client) MealPlanThisWeek(ctx context.Context) (*MealPlan, error) {
	return c.mealPlanRequest(ctx, http.MethodGet, "meal-plans/this-week", nil)
}

// TodaysMeal returns the slug of the recipe planned for today, or "" when
// nothing is planned.
func (c *Client) TodaysMeal(ctx context.Context) (string, error) {
	var slug string
	if err := c.get(ctx, "meal-plans/today", &slug); err != nil {
		return "", err
	}
	return slug, nil
}

// TodaysMealImage downloads the image of today's recipe.
func (c *Client) TodaysMealImage(ctx context.Context) ([]byte, error) {
	return c.raw(ctx, &Request{Method: http.MethodGet, Path: "meal-plans/today/image"})
}

func (c *Client) GetMealPlan(ctx context.Context, id int) (*MealPlan, error) {
	return c.mealPlanRequest(ctx, http.MethodGet, fmt.Sprintf("meal-plans/%d", id), nil)
}

func (c *Client) CreateMealPlan(ctx context.Context, p *MealPlan) error {
	return c.sendJSON(ctx, http.MethodPost, "meal-plans/create", p, nil)
}

func (c *Client) UpdateMealPlan(ctx context.Context, id int, p *MealPlan) error {
	return c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("meal-plans/%d", id), p, nil)
}

func (c *Client) DeleteMealPlan(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("meal-plans/%d", id))
}

// MealPlanShoppingList builds a shopping list from a plan's recipes.
func (c *Client) MealPlanShoppingList(ctx context.Context, id int) (*ShoppingList, error) {
	return c.shoppingListRequest(ctx, http.MethodGet, fmt.Sprintf("meal-plans/%d/shopping-list", id), nil)
}

func (p *MealPlan) Create(ctx context.Context) error {
	if p.client == nil {
		return ErrDetached
	}
	return p.client.CreateMealPlan(ctx, p)
}

func (p *MealPlan) Update(ctx context.Context) error {
	if p.client == nil {
		return ErrDetached
	}
	if p.ID == 0 {
		return ErrMissingID
	}
	return p.client.UpdateMealPlan(ctx, p.ID, p)
}

func (p *MealPlan) Delete(ctx context.Context) error {
	if p.client == nil {
		return ErrDetached
	}
	if p.ID == 0 {
		return ErrMissingID
	}
	return p.client.DeleteMealPlan(ctx, p.ID)
}

func (p *MealPlan) ShoppingListFor(ctx context.Context) (*ShoppingList, error) {
	if p.client == nil {
		return nil, ErrDetached
	}
	if p.ID == 0 {
		return nil, ErrMissingID
	}
	return p.client.MealPlanShoppingList(ctx, p.ID)
}

// Ingredient is one line of a shopping list.
type Ingredient struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Quantity int    `json:"quantity"`
	Checked  bool   `json:"checked"`
}

// ShoppingList is a group's list of ingredients to buy.
type ShoppingList struct {
	client *Client

	ID    int           `json:"id,omitempty"`
	Name  string        `json:"name"`
	Group string        `json:"group"`
	Items []*Ingredient `json:"items"`
}

// NewShoppingList builds an empty list bound to c.
func (c *Client) NewShoppingList(name, group string) *ShoppingList {
	return &ShoppingList{client: c, Name: name, Group: group, Items: []*Ingredient{}}
}

// MarshalJSON omits the server-assigned id.
func (l *ShoppingList) MarshalJSON() ([]byte, error) {
	items := l.Items
	if items == nil {
		items = []*Ingredient{}
	}
	return json.Marshal(map[string]any{"name": l.Name, "group": l.Group, "items": items})
}

func (l *ShoppingList) String() string {
	return fmt.Sprintf("<ShoppingList %q>", l.Name)
}

// Len returns the number of items.
func (l *ShoppingList) Len() int { return len(l.Items) }

func (c *Client) shoppingListRequest(ctx context.Context, method, path string, body any) (*ShoppingList, error) {
	l := &ShoppingList{}
	if err := c.sendJSON(ctx, method, path, body, l); err != nil {
		return nil, err
	}
	l.client = c
	return l, nil
}

func (c *Client) GetShoppingList(ctx context.Context, id int) (*ShoppingList, error) {
	return c.shoppingListRequest(ctx, http.MethodGet, fmt.Sprintf("shopping-lists/%d", id), nil)
}

func (c *Client) CreateShoppingList(ctx context.Context, l *ShoppingList) (*ShoppingList, error) {
	return c.shoppingListRequest(ctx, http.MethodPost, "shopping-lists", l)
}

func (c *Client) UpdateShoppingList(ctx context.Context, id int, l *ShoppingList) (*ShoppingList, error) {
	return c.shoppingListRequest(ctx, http.MethodPut, fmt.Sprintf("shopping-lists/%d", id), l)
}

func (c *Client) DeleteShoppingList(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("shopping-lists/%d", id))
}

func (l *ShoppingList) Create(ctx context.Context) (*ShoppingList, error) {
	if l.client == nil {
		return nil, ErrDetached
	}
	return l.client.CreateShoppingList(ctx, l)
}

func (l *ShoppingList) Update(ctx context.Context) (*ShoppingList, error) {
	if l.client == nil {
		return nil, ErrDetached
	}
	if l.ID == 0 {
		return nil, ErrMissingID
	}
	return l.client.UpdateShoppingList(ctx, l.ID, l)
}

func (l *ShoppingList) Delete(ctx context.Context) error {
	if l.client == nil {
		return ErrDetached
	}
	if l.ID == 0 {
		return ErrMissingID
	}
	return l.client.DeleteShoppingList(ctx, l.ID)
}

// ToggleChecked flips the checked state of item index and saves the list.
// The local item is left unchanged when the save fails.
func (l *ShoppingList) ToggleChecked(ctx context.Context, index int) (*ShoppingList, error) {
	if l.client == nil {
		return nil, ErrDetached
	}
	if l.ID == 0 {
		return nil, ErrMissingID
	}
	if index < 0 || index >= len(l.Items) {
		return nil, fmt.Errorf("shopping list item %d out of range [0,%d)", index, len(l.Items))
	}
	item := l.Items[index]
	if item == nil {
		return nil, fmt.Errorf("shopping list item %d is empty", index)
	}

	item.Checked = !item.Checked
	updated, err := l.Update(ctx)
	if err != nil {
		item.Checked = !item.Checked
		return nil, err
	}
	return updated, nil
}
