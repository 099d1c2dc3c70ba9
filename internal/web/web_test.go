package web

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/ratelimit"
	"github.com/erazemk/lostfound/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	server, database, _ := setupTestServerWith(t, Options{AllowAdminSignup: true})
	return server, database
}

// setupTestServerWith starts the portal with opts and returns the photo
// store it writes uploads to.
func setupTestServerWith(t *testing.T, opts Options) (*httptest.Server, *sql.DB, *photos.Store) {
	t.Helper()
	database := db.NewTestDB(t)
	if err := store.SeedDefaults(context.Background(), database); err != nil {
		t.Fatalf("seeding defaults: %v", err)
	}

	if opts.Photos == nil {
		photoStore, err := photos.New(t.TempDir())
		if err != nil {
			t.Fatalf("creating photo store: %v", err)
		}
		opts.Photos = photoStore
	}

	router, err := NewRouter(database, testJWTSecret, opts)
	if err != nil {
		t.Fatalf("creating router: %v", err)
	}
	server := httptest.NewServer(api.ProxyMiddleware(false)(router))
	t.Cleanup(server.Close)

	createTestUser(t, database, "admin", "admin@example.com", model.RoleAdmin)
	createTestUser(t, database, "student", "student@example.com", model.RoleStudent)

	return server, database, opts.Photos
}

func createTestUser(t *testing.T, database *sql.DB, username, email string, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user, err := store.CreateUser(context.Background(), database, username, email, hash, role)
	if err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user
}

// newClient returns a client with its own cookie jar that does not follow
// redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, target string, values url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(target, values)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, target string) *http.Response {
	t.Helper()
	resp, err := client.Get(target)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}

func login(t *testing.T, server *httptest.Server, username string) *http.Client {
	t.Helper()
	client := newClient(t)
	resp := postForm(t, client, server.URL+"/login", url.Values{"username": {username}, "password": {"password"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login as %s: expected 303, got %d", username, resp.StatusCode)
	}
	return client
}

func TestLoginRedirectsByRole(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		username string
		location string
	}{
		{"admin", "/admin"},
		{"student", "/dashboard"},
	}
	for _, tt := range tests {
		client := newClient(t)
		resp := postForm(t, client, server.URL+"/login", url.Values{"username": {tt.username}, "password": {"password"}})
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", tt.username, resp.StatusCode)
		}
		if got := resp.Header.Get("Location"); got != tt.location {
			t.Errorf("%s: expected redirect to %s, got %s", tt.username, tt.location, got)
		}

		resp = get(t, client, server.URL+tt.location)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200 on %s, got %d", tt.username, tt.location, resp.StatusCode)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := postForm(t, newClient(t), server.URL+"/login", url.Values{"username": {"student"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Invalid username or password") {
		t.Error("expected invalid credentials message")
	}
}

func TestLoginBannedUser(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()

	user, _ := store.GetUserByUsername(ctx, database, "student")
	if err := store.UpdateUserAccess(ctx, database, user.ID, user.Username, user.Email, user.Role, false, true); err != nil {
		t.Fatalf("banning user: %v", err)
	}

	resp := postForm(t, newClient(t), server.URL+"/login", url.Values{"username": {"student"}, "password": {"password"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Your account has been banned") {
		t.Error("expected banned message")
	}
}

func TestBanEndsExistingSession(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	client := login(t, server, "student")

	user, _ := store.GetUserByUsername(ctx, database, "student")
	store.UpdateUserAccess(ctx, database, user.ID, user.Username, user.Email, user.Role, false, true)

	resp := get(t, client, server.URL+"/dashboard")
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected 303 after ban, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	server, _ := setupTestServer(t)
	client := login(t, server, "student")

	u, _ := url.Parse(server.URL)
	saved := client.Jar.Cookies(u)

	resp := postForm(t, client, server.URL+"/logout", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	// Replaying the old cookie must not restore the session.
	replay := newClient(t)
	replay.Jar.SetCookies(u, saved)
	resp = get(t, replay, server.URL+"/dashboard")
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected 303 for revoked token, got %d", resp.StatusCode)
	}
}

func TestRegister(t *testing.T) {
	server, database := setupTestServer(t)

	form := url.Values{
		"username":         {"newstudent"},
		"email":            {"new@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
		"role":             {"student"},
	}
	resp := postForm(t, newClient(t), server.URL+"/register", form)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	user, err := store.GetUserByUsername(context.Background(), database, "newstudent")
	if err != nil || user == nil {
		t.Fatalf("expected registered user, got %v (err %v)", user, err)
	}
	if user.Role != model.RoleStudent {
		t.Errorf("expected student role, got %s", user.Role)
	}

	// Same username again.
	form.Set("email", "other@example.com")
	resp = postForm(t, newClient(t), server.URL+"/register", form)
	if !strings.Contains(body(t, resp), "Username already exists") {
		t.Error("expected duplicate username message")
	}

	// Same email with a new username.
	form.Set("username", "another")
	form.Set("email", "new@example.com")
	resp = postForm(t, newClient(t), server.URL+"/register", form)
	if !strings.Contains(body(t, resp), "Email already registered") {
		t.Error("expected duplicate email message")
	}
}

func TestRegisterValidation(t *testing.T) {
	server, database := setupTestServer(t)

	resp := postForm(t, newClient(t), server.URL+"/register", url.Values{
		"username":         {"ab"},
		"email":            {"not-an-email"},
		"password":         {"secret1"},
		"confirm_password": {"secret2"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if user, _ := store.GetUserByUsername(context.Background(), database, "ab"); user != nil {
		t.Error("invalid registration should not create a user")
	}
}

func TestGuards(t *testing.T) {
	server, _ := setupTestServer(t)
	anon := newClient(t)
	student := login(t, server, "student")

	tests := []struct {
		name   string
		client *http.Client
		path   string
		status int
	}{
		{"anonymous dashboard", anon, "/dashboard", http.StatusSeeOther},
		{"anonymous report", anon, "/report/lost", http.StatusSeeOther},
		{"anonymous admin", anon, "/admin", http.StatusSeeOther},
		{"student admin", student, "/admin", http.StatusSeeOther},
		{"student metrics", student, "/metrics", http.StatusSeeOther},
		{"student dashboard", student, "/dashboard", http.StatusOK},
		{"public home", anon, "/", http.StatusOK},
		{"public browse", anon, "/lost-items", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, tt.client, server.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status == http.StatusSeeOther && resp.Header.Get("Location") != "/login" {
				t.Errorf("expected redirect to /login, got %s", resp.Header.Get("Location"))
			}
		})
	}
}

func TestAdminPagesRender(t *testing.T) {
	server, database := setupTestServer(t)
	item := createTestItem(t, database, model.KindFound, nil)
	claim, err := store.CreateClaim(context.Background(), database, &model.Claim{
		ClaimantName: "Jane Doe", StudentNumber: "2021001", StudentEmail: "jane@example.com",
		Description: "Mine", Item: item.Ref(),
	})
	if err != nil {
		t.Fatalf("creating claim: %v", err)
	}
	admin := login(t, server, "admin")

	paths := []string{
		"/admin",
		"/admin/items/lost",
		"/admin/items/found?status=active&sort=item_name&order=asc",
		"/admin/items/found/" + strconv.FormatInt(item.ID, 10) + "/edit",
		"/admin/claims",
		"/admin/claims/" + strconv.FormatInt(claim.ID, 10),
		"/admin/users",
		"/admin/users/new",
		"/admin/categories",
		"/admin/locations",
		"/admin/settings",
		"/admin/statistics",
		"/admin/activity",
		"/admin/search?query=wallet&search_type=items",
		"/admin/search?query=jane&search_type=claims",
		"/admin/search?query=stud&search_type=users",
		"/metrics",
		"/items/found/" + strconv.FormatInt(item.ID, 10),
		"/search?query=wallet",
		"/claim?item_type=found&item_id=" + strconv.FormatInt(item.ID, 10),
		"/report/found",
		"/profile",
		"/change-password",
	}
	for _, path := range paths {
		resp := get(t, admin, server.URL+path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestNotFound(t *testing.T) {
	server, _ := setupTestServer(t)
	anon := newClient(t)

	for _, path := range []string{"/no-such-page", "/items/lost/999", "/items/bogus/1"} {
		resp := get(t, anon, server.URL+path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func createTestItem(t *testing.T, database *sql.DB, kind model.ItemKind, expiresAt *time.Time) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), database, &model.Item{
		Kind:          kind,
		Name:          "Black wallet",
		Category:      "Accessories",
		Description:   "Leather wallet with a student card",
		Location:      "Library",
		ReporterName:  "John Smith",
		StudentNumber: "2021002",
		StudentEmail:  "student@example.com",
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	return item
}

func TestClaimApprovalClaimsItem(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	item := createTestItem(t, database, model.KindFound, nil)

	student := login(t, server, "student")
	resp := postForm(t, student, server.URL+"/claim", url.Values{
		"full_names":     {"Jane Doe"},
		"student_number": {"2021001"},
		"student_email":  {"student@example.com"},
		"description":    {"It has my card inside"},
		"item_type":      {"found"},
		"item_id":        {strconv.FormatInt(item.ID, 10)},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("claim submit: expected 303, got %d", resp.StatusCode)
	}

	claims, err := store.ListClaimsForItem(ctx, database, item.Ref())
	if err != nil || len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d (err %v)", len(claims), err)
	}
	claim := claims[0]
	if claim.Status != model.ClaimPending {
		t.Errorf("expected pending claim, got %s", claim.Status)
	}

	admin := login(t, server, "admin")
	target := server.URL + "/admin/claims/" + strconv.FormatInt(claim.ID, 10)
	resp = postForm(t, admin, target, url.Values{"status": {"approved"}, "admin_notes": {"ID checked"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("claim decision: expected 303, got %d", resp.StatusCode)
	}

	updated, _ := store.GetItem(ctx, database, model.KindFound, item.ID)
	if updated.Status != model.ItemStatusClaimed {
		t.Errorf("expected item status claimed, got %s", updated.Status)
	}
	decided, _ := store.GetClaim(ctx, database, claim.ID)
	if decided.Status != model.ClaimApproved || decided.AdminNotes != "ID checked" {
		t.Errorf("unexpected claim after decision: %+v", decided)
	}
	if decided.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}

	history, _ := store.ListClaimHistory(ctx, database, claim.ID)
	if len(history) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(history))
	}
}

func TestClaimUnknownItem(t *testing.T) {
	server, database := setupTestServer(t)
	student := login(t, server, "student")

	resp := postForm(t, student, server.URL+"/claim", url.Values{
		"full_names":     {"Jane Doe"},
		"student_number": {"2021001"},
		"student_email":  {"student@example.com"},
		"description":    {"Mine"},
		"item_type":      {"lost"},
		"item_id":        {"999"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "The selected item does not exist.") {
		t.Error("expected missing item message")
	}

	result, _ := store.ListClaims(context.Background(), database, store.ClaimFilter{}, model.DefaultSort, 1)
	if result.Total != 0 {
		t.Errorf("expected no claims, got %d", result.Total)
	}
}

func TestClaimInvalidStatus(t *testing.T) {
	server, database := setupTestServer(t)
	claim, err := store.CreateClaim(context.Background(), database, &model.Claim{
		ClaimantName: "Jane Doe", StudentNumber: "2021001", StudentEmail: "jane@example.com", Description: "Mine",
	})
	if err != nil {
		t.Fatalf("creating claim: %v", err)
	}

	admin := login(t, server, "admin")
	postForm(t, admin, server.URL+"/admin/claims/"+strconv.FormatInt(claim.ID, 10), url.Values{"status": {"bogus"}})

	got, _ := store.GetClaim(context.Background(), database, claim.ID)
	if got.Status != model.ClaimPending {
		t.Errorf("expected claim to stay pending, got %s", got.Status)
	}
}

func TestExpireItems(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	stale := createTestItem(t, database, model.KindLost, &past)
	fresh := createTestItem(t, database, model.KindLost, nil)

	admin := login(t, server, "admin")
	resp := postForm(t, admin, server.URL+"/admin/expire", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin" {
		t.Fatalf("expected redirect to /admin, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = get(t, admin, server.URL+"/admin")
	if !strings.Contains(body(t, resp), "Expired 1 lost items and 0 found items successfully!") {
		t.Error("expected expiry summary flash")
	}

	if got, _ := store.GetItem(ctx, database, model.KindLost, stale.ID); got.Status != model.ItemStatusExpired {
		t.Errorf("expected stale item expired, got %s", got.Status)
	}
	if got, _ := store.GetItem(ctx, database, model.KindLost, fresh.ID); got.Status != model.ItemStatusActive {
		t.Errorf("expected fresh item active, got %s", got.Status)
	}
}

func TestBulkActions(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	a := createTestItem(t, database, model.KindFound, nil)
	b := createTestItem(t, database, model.KindFound, nil)
	c := createTestItem(t, database, model.KindFound, nil)

	admin := login(t, server, "admin")
	target := server.URL + "/admin/items/found/bulk"

	postForm(t, admin, target, url.Values{
		"action":  {"verify"},
		"item_id": {strconv.FormatInt(a.ID, 10), strconv.FormatInt(b.ID, 10)},
	})
	for _, id := range []int64{a.ID, b.ID} {
		if got, _ := store.GetItem(ctx, database, model.KindFound, id); !got.Verified {
			t.Errorf("expected item %d verified", id)
		}
	}
	if got, _ := store.GetItem(ctx, database, model.KindFound, c.ID); got.Verified {
		t.Error("unselected item should not be verified")
	}

	postForm(t, admin, target, url.Values{
		"action":   {"delete"},
		"item_ids": {strconv.FormatInt(a.ID, 10) + "," + strconv.FormatInt(c.ID, 10)},
	})
	for _, id := range []int64{a.ID, c.ID} {
		if got, _ := store.GetItem(ctx, database, model.KindFound, id); got != nil {
			t.Errorf("expected item %d deleted", id)
		}
	}
	if got, _ := store.GetItem(ctx, database, model.KindFound, b.ID); got == nil {
		t.Error("expected unselected item to remain")
	}
}

func TestItemStatusAnyTransition(t *testing.T) {
	server, database := setupTestServer(t)
	item := createTestItem(t, database, model.KindLost, nil)
	admin := login(t, server, "admin")
	target := server.URL + "/admin/items/lost/" + strconv.FormatInt(item.ID, 10) + "/status"

	for _, status := range []model.ItemStatus{model.ItemStatusExpired, model.ItemStatusActive, model.ItemStatusReturned} {
		postForm(t, admin, target, url.Values{"status": {string(status)}})
		got, _ := store.GetItem(context.Background(), database, model.KindLost, item.ID)
		if got.Status != status {
			t.Errorf("expected status %s, got %s", status, got.Status)
		}
	}
}

func TestDeleteUserGuards(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	admin := login(t, server, "admin")

	self, _ := store.GetUserByUsername(ctx, database, "admin")
	postForm(t, admin, server.URL+"/admin/users/"+strconv.FormatInt(self.ID, 10)+"/delete", nil)
	if got, _ := store.GetUser(ctx, database, self.ID); got == nil {
		t.Error("admin should not be able to delete their own account")
	}

	student, _ := store.GetUserByUsername(ctx, database, "student")
	postForm(t, admin, server.URL+"/admin/users/"+strconv.FormatInt(student.ID, 10)+"/delete", nil)
	if got, _ := store.GetUser(ctx, database, student.ID); got != nil {
		t.Error("expected student to be deleted")
	}
}

func TestCatalogCreateDuplicate(t *testing.T) {
	server, database := setupTestServer(t)
	admin := login(t, server, "admin")

	resp := postForm(t, admin, server.URL+"/admin/categories", url.Values{"name": {"Umbrellas"}, "is_active": {"on"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	resp = postForm(t, admin, server.URL+"/admin/categories", url.Values{"name": {"Umbrellas"}})
	if !strings.Contains(body(t, resp), "Category already exists.") {
		t.Error("expected duplicate category message")
	}

	categories, _ := store.ListCategories(context.Background(), database, false)
	count := 0
	for _, c := range categories {
		if c.Name == "Umbrellas" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 Umbrellas category, got %d", count)
	}
}

func TestSettingsRejectJWTSecret(t *testing.T) {
	server, database := setupTestServer(t)
	admin := login(t, server, "admin")

	postForm(t, admin, server.URL+"/admin/settings", url.Values{"key": {model.SettingJWTSecret}, "value": {"x"}})
	if value, _, _ := store.GetSetting(context.Background(), database, model.SettingJWTSecret); value == "x" {
		t.Error("jwt secret must not be editable from the settings page")
	}

	postForm(t, admin, server.URL+"/admin/settings", url.Values{"key": {model.SettingSiteName}, "value": {"Campus Finds"}})
	resp := get(t, admin, server.URL+"/")
	if !strings.Contains(body(t, resp), "Campus Finds") {
		t.Error("expected site name setting in page title")
	}
}

func TestLoginThrottleIgnoresForwardedFor(t *testing.T) {
	server, _, _ := setupTestServerWith(t, Options{Limiter: ratelimit.NewMemoryLimiter(2, time.Minute)})

	var codes []int
	for i := 0; i < 4; i++ {
		form := url.Values{"username": {"student"}, "password": {"wrong"}}
		req, err := http.NewRequest("POST", server.URL+"/login", strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatalf("building request: %v", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i+1))
		req.Header.Set("X-Real-IP", "198.51.100."+strconv.Itoa(i+1))
		resp, err := newClient(t).Do(req)
		if err != nil {
			t.Fatalf("POST /login: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, codes)
		}
	}
}

// pngBytes returns a small encoded PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 120, B: uint8(y * 8), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// reportWithPhoto posts a lost report named name with an attached PNG and
// returns the stored item.
func reportWithPhoto(t *testing.T, server *httptest.Server, client *http.Client, database *sql.DB, name string) *model.Item {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"item_name":      name,
		"category":       "Electronics",
		"description":    "Blue case, cracked corner",
		"location":       "IT Labs (Ritson)",
		"full_names":     "Student User",
		"student_number": "22211013",
		"student_email":  "student@example.com",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	part, err := mw.CreateFormFile("photo", "my phone.png")
	if err != nil {
		t.Fatalf("creating file part: %v", err)
	}
	part.Write(pngBytes(t))
	mw.Close()

	resp, err := client.Post(server.URL+"/report/lost", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /report/lost: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after report, got %d", resp.StatusCode)
	}

	var id int64
	if err := database.QueryRow(`SELECT id FROM lost_items WHERE item_name = ?`, name).Scan(&id); err != nil {
		t.Fatalf("finding reported item: %v", err)
	}
	item, err := store.GetItem(context.Background(), database, model.KindLost, id)
	if err != nil || item == nil {
		t.Fatalf("loading reported item: %v", err)
	}
	return item
}

var storedPhotoName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_my_phone\.jpg$`)

func TestReportPhotoLifecycle(t *testing.T) {
	server, database, photoStore := setupTestServerWith(t, Options{})
	student := login(t, server, "student")

	item := reportWithPhoto(t, server, student, database, "Phone")
	if item.Status != model.ItemStatusActive || item.Verified {
		t.Errorf("expected active unverified report, got %s verified=%v", item.Status, item.Verified)
	}
	if !storedPhotoName.MatchString(item.PhotoFilename) {
		t.Fatalf("unexpected photo name %q", item.PhotoFilename)
	}
	path := filepath.Join(photoStore.Dir, item.PhotoFilename)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected stored photo: %v", err)
	}

	resp := get(t, newClient(t), server.URL+"/uploads/"+item.PhotoFilename)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for upload, got %d", resp.StatusCode)
	}
	if data := body(t, resp); !bytes.HasPrefix([]byte(data), []byte{0xFF, 0xD8}) {
		t.Error("expected stored photo to be a JPEG")
	}

	admin := login(t, server, "admin")
	resp = postForm(t, admin, server.URL+"/admin/items/lost/"+strconv.FormatInt(item.ID, 10)+"/delete", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after delete, got %d", resp.StatusCode)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected photo removed from disk, stat err = %v", err)
	}
	resp = get(t, newClient(t), server.URL+"/uploads/"+item.PhotoFilename)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestBulkDeleteRemovesPhotos(t *testing.T) {
	server, database, photoStore := setupTestServerWith(t, Options{})
	student := login(t, server, "student")

	first := reportWithPhoto(t, server, student, database, "Phone")
	second := reportWithPhoto(t, server, student, database, "Tablet")
	kept := createTestItem(t, database, model.KindLost, nil)

	admin := login(t, server, "admin")
	resp := postForm(t, admin, server.URL+"/admin/items/lost/bulk", url.Values{
		"action":  {"delete"},
		"item_id": {strconv.FormatInt(first.ID, 10), strconv.FormatInt(second.ID, 10)},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after bulk delete, got %d", resp.StatusCode)
	}

	for _, item := range []*model.Item{first, second} {
		if _, err := os.Stat(filepath.Join(photoStore.Dir, item.PhotoFilename)); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected %s removed from disk, stat err = %v", item.PhotoFilename, err)
		}
	}
	if got, _ := store.GetItem(context.Background(), database, model.KindLost, kept.ID); got == nil {
		t.Error("expected unselected item to remain")
	}
}

func TestReportRejectsNonImage(t *testing.T) {
	server, database, photoStore := setupTestServerWith(t, Options{})
	student := login(t, server, "student")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"item_name": "Notes", "category": "Books", "description": "Spiral notebook",
		"location": "Department Office", "full_names": "Student User",
		"student_number": "22211013", "student_email": "student@example.com",
	} {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("photo", "notes.png")
	part.Write([]byte("definitely not an image"))
	mw.Close()

	resp, err := student.Post(server.URL+"/report/lost", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /report/lost: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Upload a JPEG, PNG or GIF image.") {
		t.Error("expected photo error message")
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM lost_items`).Scan(&count)
	if count != 0 {
		t.Errorf("expected no report stored, got %d", count)
	}
	entries, _ := os.ReadDir(photoStore.Dir)
	if len(entries) != 0 {
		t.Errorf("expected no stored photos, got %d", len(entries))
	}
}

func TestEditLostItemDropsCurrentLocation(t *testing.T) {
	server, database := setupTestServer(t)
	item := createTestItem(t, database, model.KindLost, nil)
	admin := login(t, server, "admin")

	resp := postForm(t, admin, server.URL+"/admin/items/lost/"+strconv.FormatInt(item.ID, 10)+"/edit", url.Values{
		"item_name":        {"Brown wallet"},
		"category":         {"Personal Items"},
		"description":      {"Leather wallet"},
		"location":         {"Library (Steve Biko)"},
		"current_location": {"Department Office"},
		"status":           {"active"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after edit, got %d", resp.StatusCode)
	}

	got, _ := store.GetItem(context.Background(), database, model.KindLost, item.ID)
	if got.Name != "Brown wallet" {
		t.Errorf("expected edit applied, got %q", got.Name)
	}
	if got.CurrentLocation != "" {
		t.Errorf("lost items have no current location, got %q", got.CurrentLocation)
	}
}

func TestExpireItemsUsesExpirySetting(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()

	older := createTestItem(t, database, model.KindFound, nil)
	newer := createTestItem(t, database, model.KindFound, nil)
	database.Exec(`UPDATE found_items SET created_at = datetime('now', '-15 days') WHERE id = ?`, older.ID)
	database.Exec(`UPDATE found_items SET created_at = datetime('now', '-5 days') WHERE id = ?`, newer.ID)

	admin := login(t, server, "admin")

	// The 30 day default keeps both.
	postForm(t, admin, server.URL+"/admin/expire", nil)
	if got, _ := store.GetItem(ctx, database, model.KindFound, older.ID); got.Status != model.ItemStatusActive {
		t.Fatalf("expected 15 day old item active under default, got %s", got.Status)
	}

	if err := store.SetSetting(ctx, database, model.SettingItemExpiryDays, "10", "", nil); err != nil {
		t.Fatalf("setting expiry days: %v", err)
	}
	postForm(t, admin, server.URL+"/admin/expire", nil)
	if got, _ := store.GetItem(ctx, database, model.KindFound, older.ID); got.Status != model.ItemStatusExpired {
		t.Errorf("expected 15 day old item expired, got %s", got.Status)
	}
	if got, _ := store.GetItem(ctx, database, model.KindFound, newer.ID); got.Status != model.ItemStatusActive {
		t.Errorf("expected 5 day old item active, got %s", got.Status)
	}
}
