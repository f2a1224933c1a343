// Package mealietest runs an in-memory Mealie server for tests.
package mealietest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Fixed credentials accepted by the fake server.
const (
	APIKey   = "test-api-key"
	Username = "changeme@email.com"
	Password = "MyPassword"
	Version  = "v0.5.6"
)

var signingKey = []byte("mealietest-signing-key")

// RecordedRequest is what the server saw for one call.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          []byte
}

// Server is a fake Mealie API. Recipes are stored as the client sent them
// and served back with camelCase keys, as the real server does.
type Server struct {
	Logger *zap.Logger

	mu       sync.Mutex
	recipes  map[string]map[string]any
	tags     []map[string]any
	lists    map[int]map[string]any
	backups  map[string][]byte
	files    map[string]string
	requests []RecordedRequest
	issued   int
}

// New returns a server seeded with one recipe, one tag and one shopping list.
func New() *Server {
	s := &Server{
		Logger:  zap.NewNop(),
		recipes: make(map[string]map[string]any),
		lists:   make(map[int]map[string]any),
		backups: map[string][]byte{"mealie_2021-May-01.zip": []byte("PK-backup")},
		files:   make(map[string]string),
	}
	s.recipes["pasta-carbonara"] = map[string]any{
		"id":                1,
		"name":              "Pasta Carbonara",
		"slug":              "pasta-carbonara",
		"image":             "pasta-carbonara.webp",
		"recipe_yield":      "2 servings",
		"recipe_ingredient": []any{"200g spaghetti", "2 eggs"},
		"tags":              []any{"dinner"},
		"org_url":           "https://example.com/carbonara",
		"date_added":        "2021-05-01",
		"comments":          []any{},
	}
	s.tags = []map[string]any{{"id": 1, "name": "Dinner", "slug": "dinner"}}
	s.lists[1] = map[string]any{
		"id":    1,
		"name":  "Weekly",
		"group": "Home",
		"items": []any{
			map[string]any{"title": "", "text": "eggs", "quantity": 2, "checked": false},
			map[string]any{"title": "", "text": "milk", "quantity": 1, "checked": true},
		},
	}
	return s
}

// Start serves s on an httptest server closed at the end of the test.
func Start(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}
	}
	return s.requests[len(s.requests)-1]
}

// TokensIssued counts successful logins and refreshes.
func (s *Server) TokensIssued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// IssueToken signs a session token for Username that expires after ttl.
func IssueToken(ttl time.Duration) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": Username,
		"exp": time.Now().Add(ttl).Unix(),
	})
	s, err := tok.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return s
}

// Handler returns the HTTP handler for the fake API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/app/about", s.handleAbout)
	mux.HandleFunc("POST /api/auth/token", s.handleToken)

	authed := http.NewServeMux()
	authed.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	authed.HandleFunc("GET /api/users/self", s.handleSelf)
	authed.HandleFunc("POST /api/users/api-tokens", s.handleCreateAPIToken)
	authed.HandleFunc("GET /api/recipes/summary", s.handleRecipeSummary)
	authed.HandleFunc("POST /api/recipes/create", s.handleCreateRecipe)
	authed.HandleFunc("POST /api/recipes/create-url", s.handleCreateRecipeURL)
	authed.HandleFunc("GET /api/recipes/{slug}", s.handleGetRecipe)
	authed.HandleFunc("PUT /api/recipes/{slug}", s.handleUpdateRecipe)
	authed.HandleFunc("PATCH /api/recipes/{slug}", s.handleUpdateRecipe)
	authed.HandleFunc("DELETE /api/recipes/{slug}", s.handleDeleteRecipe)
	authed.HandleFunc("GET /api/recipes/{slug}/zip", s.handleRecipeZip)
	authed.HandleFunc("POST /api/recipes/{slug}/comments", s.handleCreateComment)
	authed.HandleFunc("GET /api/media/recipes/{slug}/images/{file}", s.handleRecipeImage)
	authed.HandleFunc("GET /api/recipes/tags", s.handleListTags)
	authed.HandleFunc("POST /api/recipes/tags", s.handleCreateTag)
	authed.HandleFunc("GET /api/shopping-lists/{id}", s.handleGetList)
	authed.HandleFunc("PUT /api/shopping-lists/{id}", s.handlePutList)
	authed.HandleFunc("GET /api/meal-plans/today", s.handleToday)
	authed.HandleFunc("GET /api/backups/available", s.handleBackups)
	authed.HandleFunc("POST /api/backups/export/database", s.handleExport)
	authed.HandleFunc("GET /api/backups/{name}/download", s.handleBackupToken)
	authed.HandleFunc("DELETE /api/backups/{name}/delete", s.handleDeleteBackup)
	authed.HandleFunc("GET /api/utils/download", s.handleDownload)
	authed.HandleFunc("GET /api/debug/version", s.handleDebugVersion)
	authed.HandleFunc("GET /api/debug/statistics", s.handleStatistics)
	authed.HandleFunc("GET /api/debug/log/{n}", s.handleLog)
	mux.Handle("/api/", s.authMiddleware(authed))

	return s.record(mux)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		s.mu.Unlock()

		s.Logger.Debug("fake request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !validToken(value) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validToken(value string) bool {
	if value == APIKey {
		return true
	}
	_, err := jwt.Parse(value, func(*jwt.Token) (any, error) { return signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"production":  false,
		"version":     Version,
		"demoStatus":  false,
		"allowSignup": true,
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Bad Request"})
		return
	}
	if r.PostForm.Get("username") == "" {
		writeValidation(w, []string{"body", "username"})
		return
	}
	if r.PostForm.Get("username") != Username || r.PostForm.Get("password") != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
		return
	}
	s.issue(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.issue(w)
}

func (s *Server) issue(w http.ResponseWriter) {
	s.mu.Lock()
	s.issued++
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": IssueToken(time.Hour),
		"token_type":   "bearer",
	})
}

func (s *Server) handleSelf(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       1,
		"username": "changeme",
		"fullName": "Change Me",
		"email":    Username,
		"admin":    true,
		"group":    "Home",
		"tokens":   []any{map[string]any{"id": 3, "name": "cli"}},
	})
}

func (s *Server) handleCreateAPIToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeValidation(w, []string{"body", "name"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": "key-for-" + body.Name})
}

func (s *Server) handleRecipeSummary(w http.ResponseWriter, r *http.Request) {
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 9999
	}

	s.mu.Lock()
	slugs := make([]string, 0, len(s.recipes))
	for slug := range s.recipes {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	out := make([]any, 0, len(slugs))
	for i, slug := range slugs {
		if i < start || len(out) >= limit {
			continue
		}
		rec := s.recipes[slug]
		out = append(out, camelize(map[string]any{
			"id":   rec["id"],
			"name": rec["name"],
			"slug": rec["slug"],
		}))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var rec map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Bad Request"})
		return
	}
	name, _ := rec["name"].(string)
	if name == "" {
		writeValidation(w, []string{"body", "name"})
		return
	}
	slug := slugify(name)

	s.mu.Lock()
	rec["slug"] = slug
	rec["id"] = len(s.recipes) + 1
	s.recipes[slug] = rec
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, slug)
}

func (s *Server) handleCreateRecipeURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		writeValidation(w, []string{"body", "url"})
		return
	}
	parts := strings.Split(strings.TrimRight(body.URL, "/"), "/")
	slug := slugify(parts[len(parts)-1])

	s.mu.Lock()
	s.recipes[slug] = map[string]any{"id": len(s.recipes) + 1, "name": slug, "slug": slug, "org_url": body.URL}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, slug)
}

func (s *Server) recipe(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	s.mu.Lock()
	rec, ok := s.recipes[r.PathValue("slug")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
	}
	return rec, ok
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recipe(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	out := camelize(rec)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recipe(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Bad Request"})
		return
	}
	s.mu.Lock()
	for k, v := range patch {
		if k == "slug" || k == "id" {
			continue
		}
		rec[k] = v
	}
	out := camelize(rec)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.recipe(w, r); !ok {
		return
	}
	s.mu.Lock()
	delete(s.recipes, r.PathValue("slug"))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"detail": "deleted"})
}

func (s *Server) handleRecipeZip(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recipe(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create(r.PathValue("slug") + ".json")
	s.mu.Lock()
	_ = json.NewEncoder(f).Encode(rec)
	s.mu.Unlock()
	_ = zw.Close()

	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recipe(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	comments, _ := rec["comments"].([]any)
	comment := map[string]any{
		"id":          len(comments) + 1,
		"recipe_slug": r.PathValue("slug"),
		"text":        body.Text,
		"date_added":  "2021-05-02T10:00:00",
	}
	rec["comments"] = append(comments, comment)
	out := camelize(comment)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleRecipeImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.recipe(w, r); !ok {
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	_, _ = w.Write([]byte("RIFF" + r.PathValue("file")))
}

func (s *Server) handleListTags(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]any, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeValidation(w, []string{"body", "name"})
		return
	}
	s.mu.Lock()
	tag := map[string]any{"id": len(s.tags) + 1, "name": body.Name, "slug": slugify(body.Name)}
	s.tags = append(s.tags, tag)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	s.mu.Lock()
	list, ok := s.lists[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePutList(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	var list map[string]any
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Bad Request"})
		return
	}
	list["id"] = id
	s.mu.Lock()
	s.lists[id] = list
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleToday(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "pasta-carbonara")
}

func (s *Server) handleBackups(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	names := make([]string, 0, len(s.backups))
	for name := range s.backups {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)

	imports := make([]any, 0, len(names))
	for _, name := range names {
		imports = append(imports, map[string]any{"name": name, "date": "2021-05-01T12:00:00"})
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": imports, "templates": []any{}})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tag string `json:"tag"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	name := "mealie_export.zip"
	if body.Tag != "" {
		name = body.Tag + "_export.zip"
	}
	s.mu.Lock()
	s.backups[name] = []byte("PK-" + name)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, name)
}

func (s *Server) handleBackupToken(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.mu.Lock()
	_, ok := s.backups[name]
	token := fmt.Sprintf("file-%d", len(s.files)+1)
	if ok {
		s.files[token] = name
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fileToken": token})
}

func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.backups, r.PathValue("name"))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"detail": "deleted"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeValidation(w, []string{"query", "token"})
		return
	}
	s.mu.Lock()
	name, ok := s.files[token]
	data := s.backups[name]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Bad Request"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) handleDebugVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"production": false, "version": Version, "demoStatus": false})
}

func (s *Server) handleStatistics(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	total := len(s.recipes)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"totalRecipes":         total,
		"totalUsers":           1,
		"totalGroups":          1,
		"uncategorizedRecipes": total,
		"untaggedRecipes":      0,
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeValidation(w, []string{"path", "num"})
		return
	}
	lines := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		lines = append(lines, fmt.Sprintf("INFO line %d", i))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, strings.Join(lines, "\n"))
}

func writeValidation(w http.ResponseWriter, loc []string) {
	l := make([]any, len(loc))
	for i, p := range loc {
		l[i] = p
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []any{map[string]any{"loc": l, "msg": "field required", "type": "value_error.missing"}},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// camelize copies v with snake_case object keys turned into camelCase.
func camelize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[camelCase(k)] = camelize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = camelize(item)
		}
		return out
	default:
		return v
	}
}

func camelCase(key string) string {
	if key == "org_url" {
		return "orgURL"
	}
	parts := strings.Split(key, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
