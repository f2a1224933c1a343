package mealie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User is a Mealie account. Password is only sent when creating a user
// and is needed locally by UpdatePassword.
type User struct {
	client *Client

	ID              string    `json:"id,omitempty"`
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Admin           bool      `json:"admin"`
	Group           string    `json:"group"`
	FavoriteRecipes []*Recipe `json:"favorite_recipes,omitempty"`
	Tokens          []*APIKey `json:"tokens,omitempty"`
	Password        string    `json:"password,omitempty"`
}

// NewUser builds an unsaved user bound to c.
func (c *Client) NewUser(username, fullName, email, group, password string) *User {
	return &User{client: c, Username: username, FullName: fullName, Email: email, Group: group, Password: password}
}

// MarshalJSON never sends the user's API tokens.
func (u *User) MarshalJSON() ([]byte, error) {
	type plain User
	p := plain(*u)
	p.Tokens = nil
	return json.Marshal(p)
}

func (u *User) String() string {
	return fmt.Sprintf("<User %s>", u.Username)
}

func (u *User) attach(c *Client) {
	u.client = c
	for _, r := range u.FavoriteRecipes {
		if r != nil {
			r.attach(c)
		}
	}
	for _, k := range u.Tokens {
		if k != nil {
			k.client = c
		}
	}
}

func (c *Client) userRequest(ctx context.Context, method, path string, body any) (*User, error) {
	u := &User{}
	if err := c.sendJSON(ctx, method, path, body, u); err != nil {
		return nil, err
	}
	u.attach(c)
	return u, nil
}

// withoutPassword returns a shallow copy of u suitable for updates.
func (u *User) withoutPassword() *User {
	cp := *u
	cp.Password = ""
	return &cp
}

func userPath(id string) string {
	return "users/" + seg(id)
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return c.userRequest(ctx, http.MethodGet, "users/self", nil)
}

func (c *Client) Users(ctx context.Context) ([]*User, error) {
	var out []*User
	if err := c.get(ctx, "users", &out); err != nil {
		return nil, err
	}
	for _, u := range out {
		u.attach(c)
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return c.userRequest(ctx, http.MethodGet, userPath(id), nil)
}

// CreateUser registers u, including its Password.
func (c *Client) CreateUser(ctx context.Context, u *User) (*User, error) {
	return c.userRequest(ctx, http.MethodPost, "users", u)
}

func (c *Client) UpdateUser(ctx context.Context, id string, u *User) (*User, error) {
	return c.userRequest(ctx, http.MethodPut, userPath(id), u.withoutPassword())
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, userPath(id))
}

// ResetPassword resets the user's password to the server default.
func (c *Client) ResetPassword(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPut, userPath(id)+"/reset-password", nil, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	body := map[string]string{"current_password": currentPassword, "new_password": newPassword}
	return c.sendJSON(ctx, http.MethodPut, userPath(id)+"/password", body, nil)
}

// Favorites lists the user's favorite recipes.
func (c *Client) Favorites(ctx context.Context, id string) ([]*Recipe, error) {
	u, err := c.userRequest(ctx, http.MethodGet, userPath(id)+"/favorites", nil)
	if err != nil {
		return nil, err
	}
	return u.FavoriteRecipes, nil
}

func (c *Client) AddFavorite(ctx context.Context, id, recipeSlug string) error {
	return c.sendJSON(ctx, http.MethodPost, userPath(id)+"/favorites/"+seg(recipeSlug), nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, id, recipeSlug string) error {
	return c.delete(ctx, userPath(id)+"/favorites/"+seg(recipeSlug))
}

// UserImage downloads the user's profile image.
func (c *Client) UserImage(ctx context.Context, id string) ([]byte, error) {
	return c.raw(ctx, &Request{Method: http.MethodGet, Path: userPath(id) + "/image"})
}

// UpdateUserImage uploads a new profile image.
func (c *Client) UpdateUserImage(ctx context.Context, id string, image []byte, fileName string) error {
	req := &Request{
		Method: http.MethodPost,
		Path:   userPath(id) + "/image",
		Body:   MultipartBody{Files: []FilePart{{Field: "profile_image", FileName: fileName, Data: image}}},
	}
	_, err := c.Send(ctx, req)
	return err
}

func (u *User) Create(ctx context.Context) (*User, error) {
	if u.client == nil {
		return nil, ErrDetached
	}
	return u.client.CreateUser(ctx, u)
}

func (u *User) Update(ctx context.Context) (*User, error) {
	if u.client == nil {
		return nil, ErrDetached
	}
	return u.client.UpdateUser(ctx, u.ID, u)
}

func (u *User) Delete(ctx context.Context) error {
	if u.client == nil {
		return ErrDetached
	}
	return u.client.DeleteUser(ctx, u.ID)
}

func (u *User) ResetPassword(ctx context.Context) error {
	if u.client == nil {
		return ErrDetached
	}
	return u.client.ResetPassword(ctx, u.ID)
}

// UpdatePassword changes the password from u.Password to newPassword.
func (u *User) UpdatePassword(ctx context.Context, newPassword string) error {
	if u.client == nil {
		return ErrDetached
	}
	if u.Password == "" {
		return ErrMissingPassword
	}
	if err := u.client.UpdatePassword(ctx, u.ID, u.Password, newPassword); err != nil {
		return err
	}
	u.Password = newPassword
	return nil
}

func (u *User) Favorites(ctx context.Context) ([]*Recipe, error) {
	if u.client == nil {
		return nil, ErrDetached
	}
	return u.client.Favorites(ctx, u.ID)
}

func (u *User) AddFavorite(ctx context.Context, recipeSlug string) error {
	if u.client == nil {
		return ErrDetached
	}
	return u.client.AddFavorite(ctx, u.ID, recipeSlug)
}

func (u *User) RemoveFavorite(ctx context.Context, recipeSlug string) error {
	if u.client == nil {
		return ErrDetached
	}
	return u.client.RemoveFavorite(ctx, u.ID, recipeSlug)
}

func (u *User) Image(ctx context.Context) ([]byte, error) {
	if u.client == nil {
		return nil, ErrDetached
	}
	return u.client.UserImage(ctx, u.ID)
}

func (u *User) UpdateImage(ctx context.Context, image []byte, fileName string) error {
	if u.client == nil {
		return ErrDetached
	}
	return u.client.UpdateUserImage(ctx, u.ID, image, fileName)
}

// UserSignup is an invitation that lets someone create an account.
type UserSignup struct {
	client *Client

	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	Token string `json:"token,omitempty"`
}

// MarshalJSON never sends the signup token in a body; it travels in the path.
func (s *UserSignup) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"name": s.Name, "admin": s.Admin})
}

func (c *Client) SignupTokens(ctx context.Context) ([]*UserSignup, error) {
	var out []*UserSignup
	if err := c.get(ctx, "users/sign-ups", &out); err != nil {
		return nil, err
	}
	for _, s := range out {
		s.client = c
	}
	return out, nil
}

// CreateSignupToken issues a new invitation.
func (c *Client) CreateSignupToken(ctx context.Context, name string, admin bool) (*UserSignup, error) {
	s := &UserSignup{}
	if err := c.sendJSON(ctx, http.MethodPost, "users/sign-ups", &UserSignup{Name: name, Admin: admin}, s); err != nil {
		return nil, err
	}
	s.client = c
	return s, nil
}

// SignupWithToken creates an account using an invitation token.
func (c *Client) SignupWithToken(ctx context.Context, token string, u *User) (*User, error) {
	return c.userRequest(ctx, http.MethodPost, "users/sign-ups/"+seg(token), u)
}

func (c *Client) DeleteSignupToken(ctx context.Context, token string) error {
	return c.delete(ctx, "users/sign-ups/"+seg(token))
}

func (s *UserSignup) Signup(ctx context.Context, u *User) (*User, error) {
	if s.client == nil {
		return nil, ErrDetached
	}
	if s.Token == "" {
		return nil, ErrMissingSignupToken
	}
	return s.client.SignupWithToken(ctx, s.Token, u)
}

func (s *UserSignup) Delete(ctx context.Context) error {
	if s.client == nil {
		return ErrDetached
	}
	if s.Token == "" {
		return ErrMissingSignupToken
	}
	return s.client.DeleteSignupToken(ctx, s.Token)
}
