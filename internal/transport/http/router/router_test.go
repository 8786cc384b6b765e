package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/core/auth"
	"job-portal/internal/core/database/dbtest"
	"job-portal/internal/core/session"
	"job-portal/internal/domain"
	"job-portal/internal/repo"
	"job-portal/internal/service"
	"job-portal/internal/transport/http/view"
)

type app struct {
	srv     *httptest.Server
	auth    *service.AuthService
	catalog *service.CatalogService
	apps    *service.ApplicationService
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := dbtest.Open(t)
	log := zap.NewNop()
	users := repo.NewUserRepo(db)
	offers := repo.NewOfferRepo(db)
	a := &app{
		auth:    service.NewAuthService(users, auth.Hasher{Cost: 4}, log),
		catalog: service.NewCatalogService(repo.NewCompanyRepo(db), offers, users, nil, time.Minute, log),
		apps:    service.NewApplicationService(repo.NewApplicationRepo(db), offers, users, false, log),
	}
	views, err := view.New()
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	r := New(Deps{
		Log:         log,
		Mode:        gin.TestMode,
		Limits:      Limits{MaxBodyBytes: 1 << 20, RequestTimeout: 5 * time.Second},
		Sessions:    session.NewStore(session.NewMemoryBackend(), []byte("test-secret-0123456789abcdef0123")),
		SessionName: "portal_session",
		Views:       views,
		Auth:        a.auth,
		Catalog:     a.catalog,
		Apps:        a.apps,
	})
	a.srv = httptest.NewServer(r)
	t.Cleanup(a.srv.Close)
	return a
}

// browser keeps cookies and never follows redirects.
type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func (a *app) browser(t *testing.T) *browser {
	jar, _ := cookiejar.New(nil)
	return &browser{t: t, base: a.srv.URL, c: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	res, err := b.c.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res, string(body)
}

func (b *browser) get(path string, headers ...string) (*http.Response, string) {
	b.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, b.base+path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values, headers ...string) (*http.Response, string) {
	b.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

var tokenRe = regexp.MustCompile(`name="csrf-token" content="([0-9a-f]{64})"`)

// token renders path and returns the CSRF token of the page.
func (b *browser) token(path string) string {
	b.t.Helper()
	res, body := b.get(path)
	if res.StatusCode != http.StatusOK {
		b.t.Fatalf("GET %s: status %d", path, res.StatusCode)
	}
	m := tokenRe.FindStringSubmatch(body)
	if m == nil {
		b.t.Fatalf("GET %s: no csrf token in page", path)
	}
	return m[1]
}

func (b *browser) login(email, password string) *http.Response {
	b.t.Helper()
	tok := b.token("/login")
	res, _ := b.post("/login", url.Values{"csrf_token": {tok}, "email": {email}, "password": {password}})
	return res
}

func wantRedirect(t *testing.T, res *http.Response, to string) {
	t.Helper()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != to {
		t.Fatalf("Location = %q, want %q", loc, to)
	}
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("json %q: %v", body, err)
	}
	return out
}

func (a *app) seedOffer(t *testing.T) *domain.JobOffer {
	t.Helper()
	ctx := context.Background()
	c, err := a.catalog.CreateCompany(ctx, service.CompanyInput{Name: "Acme Labs", Sector: "IT", Email: "jobs@acme.test"})
	if err != nil {
		t.Fatalf("company: %v", err)
	}
	o, err := a.catalog.CreateOffer(ctx, service.OfferInput{Title: "Go Intern", CompanyID: c.ID, ContractType: "Internship"})
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	return o
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	res, body := a.browser(t).get("/health")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, `"ok":1`) {
		t.Fatalf("health: %d %s", res.StatusCode, body)
	}
}

func TestGuards(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	res, _ := b.get("/")
	wantRedirect(t, res, "/login")
	res, _ = b.get("/admin/dashboard")
	wantRedirect(t, res, "/login")
	res, _ = b.get("/student/jobs")
	wantRedirect(t, res, "/login")

	res, body := b.get("/admin/search")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
	if got := decode(t, body); got["success"] != false || got["error"] != "Unauthorized" {
		t.Fatalf("body = %v", got)
	}
}

func TestLoginWithoutTokenIsRefused(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	b.token("/login")

	res, _ := b.post("/login", url.Values{"email": {"x@test.com"}, "password": {"whatever"}})
	wantRedirect(t, res, "/login")
	_, body := b.get("/login")
	if !strings.Contains(body, "Invalid CSRF token") {
		t.Fatal("csrf message not shown")
	}
}

func TestBadLoginKeepsEmailNotPassword(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)

	res := b.login("nobody@test.com", "Secret123")
	wantRedirect(t, res, "/login")
	_, body := b.get("/login")
	if !strings.Contains(body, "Invalid email or password") {
		t.Fatal("login error not shown")
	}
	if !strings.Contains(body, `value="nobody@test.com"`) {
		t.Fatal("email not kept")
	}
	if strings.Contains(body, "Secret123") {
		t.Fatal("password echoed back")
	}

	// flash is gone on the next view
	_, body = b.get("/login")
	if strings.Contains(body, "Invalid email or password") {
		t.Fatal("flash shown twice")
	}
}

func TestRegisterShowsEveryRule(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	tok := b.token("/register")

	res, _ := b.post("/register", url.Values{
		"csrf_token": {tok}, "email": {"bad"}, "password": {"short"}, "password_confirm": {"other"},
	})
	wantRedirect(t, res, "/register")
	_, body := b.get("/register")
	for _, want := range []string{
		"The email field must be a valid email address",
		"The promotion field is required",
		"The password must contain at least 8 characters",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRegisterWithOverlongPasswordNamesTheRule(t *testing.T) {
	a := newApp(t)
	b := a.browser(t)
	tok := b.token("/register")
	long := "Abcdef12" + strings.Repeat("x", 70)

	res, _ := b.post("/register", url.Values{
		"csrf_token": {tok}, "email": {"long@test.com"}, "password": {long},
		"password_confirm": {long}, "promotion": {"2025"}, "specialization": {"CS"},
	})
	wantRedirect(t, res, "/register")
	_, body := b.get("/register")
	if !strings.Contains(body, "The password must not exceed 72 bytes") {
		t.Fatal("length rule not shown")
	}
	if strings.Contains(body, "An unexpected error occurred") {
		t.Fatal("generic error shown")
	}
}

func TestStudentAppliesOnce(t *testing.T) {
	a := newApp(t)
	o := a.seedOffer(t)
	b := a.browser(t)

	tok := b.token("/register")
	res, _ := b.post("/register", url.Values{
		"csrf_token": {tok}, "email": {"stu@test.com"}, "password": {"Abcdef12"},
		"password_confirm": {"Abcdef12"}, "promotion": {"2025"}, "specialization": {"CS"},
	})
	wantRedirect(t, res, "/student/jobs")

	// logged in: guest pages send the student home
	res, _ = b.get("/login")
	wantRedirect(t, res, "/student/jobs")
	res, _ = b.get("/admin/dashboard")
	wantRedirect(t, res, "/login")

	_, body := b.get("/student/jobs?q=go")
	if !strings.Contains(body, "Go Intern") {
		t.Fatal("offer not listed")
	}

	detail := fmt.Sprintf("/student/jobs/%d", o.ID)
	tok = b.token(detail)
	apply := url.Values{"csrf_token": {tok}, "job_offer_id": {fmt.Sprint(o.ID)}, "cover_letter": {"Hire me"}}
	res, _ = b.post("/student/apply", apply)
	wantRedirect(t, res, detail)
	_, body = b.get(detail)
	if !strings.Contains(body, "Application sent successfully") || !strings.Contains(body, "already applied") {
		t.Fatal("apply outcome not shown")
	}

	res, _ = b.post("/student/apply", apply)
	wantRedirect(t, res, detail)
	_, body = b.get(detail)
	// once in the error list, once in the banner
	if strings.Count(body, "You have already applied to this offer") < 2 {
		t.Fatal("duplicate not refused")
	}

	_, body = b.get("/student/my-applications")
	got := decode(t, body)
	if list, _ := got["applications"].([]any); got["success"] != true || len(list) != 1 {
		t.Fatalf("my-applications = %v", got)
	}

	_, body = b.get("/student/jobs/search?contract_type=CDI")
	if list, _ := decode(t, body)["offers"].([]any); len(list) != 0 {
		t.Fatalf("filter ignored: %v", list)
	}
}

func TestApplyToMissingOfferEndsOnList(t *testing.T) {
	a := newApp(t)
	if _, err := a.auth.Register(context.Background(), service.RegisterInput{
		Email: "stu@test.com", Password: "Abcdef12", PasswordConfirm: "Abcdef12", Promotion: "2025", Specialization: "CS",
	}); err != nil {
		t.Fatal(err)
	}
	b := a.browser(t)
	wantRedirect(t, b.login("stu@test.com", "Abcdef12"), "/student/jobs")

	tok := b.token("/student/jobs")
	res, _ := b.post("/student/apply", url.Values{"csrf_token": {tok}, "job_offer_id": {"999"}, "cover_letter": {"x"}})
	wantRedirect(t, res, "/student/jobs/999")
	res, _ = b.get("/student/jobs/999")
	wantRedirect(t, res, "/student/jobs")
	_, body := b.get("/student/jobs")
	if !strings.Contains(body, "Offer not found or archived") {
		t.Fatal("error not shown")
	}
}

func TestApplyWithMalformedOfferID(t *testing.T) {
	a := newApp(t)
	if _, err := a.auth.Register(context.Background(), service.RegisterInput{
		Email: "stu@test.com", Password: "Abcdef12", PasswordConfirm: "Abcdef12", Promotion: "2025", Specialization: "CS",
	}); err != nil {
		t.Fatal(err)
	}
	b := a.browser(t)
	wantRedirect(t, b.login("stu@test.com", "Abcdef12"), "/student/jobs")

	tok := b.token("/student/jobs")
	res, _ := b.post("/student/apply", url.Values{"csrf_token": {tok}, "job_offer_id": {"abc"}, "cover_letter": {"x"}})
	wantRedirect(t, res, "/student/jobs")
	_, body := b.get("/student/jobs")
	if !strings.Contains(body, "Offer not found or archived") {
		t.Fatal("error not shown")
	}
}

func TestAdminUpdatesStatus(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	o := a.seedOffer(t)
	stu, err := a.auth.Register(ctx, service.RegisterInput{
		Email: "stu@test.com", Password: "Abcdef12", PasswordConfirm: "Abcdef12", Promotion: "2025", Specialization: "CS",
	})
	if err != nil {
		t.Fatal(err)
	}
	appl, err := a.apps.Apply(ctx, stu.ID, service.ApplyInput{OfferID: o.ID, CoverLetter: "Hello"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.auth.CreateAdmin(ctx, "admin@test.com", "Admin123"); err != nil {
		t.Fatal(err)
	}

	b := a.browser(t)
	wantRedirect(t, b.login("admin@test.com", "Admin123"), "/admin/dashboard")

	tok := b.token("/admin/dashboard")
	_, body := b.get(fmt.Sprintf("/admin/job-applications/%d", o.ID))
	if !strings.Contains(body, "stu@test.com") {
		t.Fatal("applicant not listed")
	}

	form := url.Values{"application_id": {fmt.Sprint(appl.ID)}, "status": {"ACCEPTED"}}
	_, body = b.post("/admin/update-application-status", form, "Accept", "application/json")
	if got := decode(t, body); got["success"] != false || got["error"] != "Invalid CSRF token" {
		t.Fatalf("no token: %v", got)
	}

	_, body = b.post("/admin/update-application-status", form, "X-CSRF-Token", tok)
	if got := decode(t, body); got["success"] != true || got["message"] != "Status updated successfully" {
		t.Fatalf("update: %v", got)
	}

	form.Set("status", "HIRED")
	_, body = b.post("/admin/update-application-status", form, "X-CSRF-Token", tok)
	if got := decode(t, body); got["error"] != "Invalid status" {
		t.Fatalf("bad status: %v", got)
	}

	_, body = b.get(fmt.Sprintf("/admin/student-details?student_id=%d", stu.ID))
	got := decode(t, body)
	student, _ := got["student"].(map[string]any)
	if got["success"] != true || student["email"] != "stu@test.com" {
		t.Fatalf("details: %v", got)
	}

	_, body = b.get("/admin/search?search=acme")
	if got := decode(t, body); got["count"] != float64(1) {
		t.Fatalf("search: %v", got)
	}
}

func TestAdminCompanyForms(t *testing.T) {
	a := newApp(t)
	if _, err := a.auth.CreateAdmin(context.Background(), "admin@test.com", "Admin123"); err != nil {
		t.Fatal(err)
	}
	b := a.browser(t)
	wantRedirect(t, b.login("admin@test.com", "Admin123"), "/admin/dashboard")
	tok := b.token("/admin/dashboard")

	res, _ := b.post("/admin/company/create", url.Values{
		"csrf_token": {tok}, "name": {"Blue Ocean"}, "sector": {"Sea"}, "email": {"hi@blue.test"},
	})
	wantRedirect(t, res, "/admin/dashboard")
	_, body := b.get("/admin/dashboard")
	if !strings.Contains(body, "Company created successfully") || !strings.Contains(body, "BO") {
		t.Fatal("company not created")
	}

	res, _ = b.post("/admin/company/create", url.Values{
		"csrf_token": {tok}, "name": {"Other"}, "sector": {"Sea"}, "email": {"hi@blue.test"},
	})
	wantRedirect(t, res, "/admin/dashboard")
	_, body = b.get("/admin/dashboard")
	if !strings.Contains(body, "This email is already used by another company") {
		t.Fatal("duplicate email accepted")
	}

	res, _ = b.post("/admin/company/delete", url.Values{"csrf_token": {tok}, "id": {"999"}})
	wantRedirect(t, res, "/admin/dashboard")
	_, body = b.get("/admin/dashboard")
	if !strings.Contains(body, "Company not found") {
		t.Fatal("missing company not reported")
	}
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	if _, err := a.auth.CreateAdmin(context.Background(), "admin@test.com", "Admin123"); err != nil {
		t.Fatal(err)
	}
	b := a.browser(t)
	wantRedirect(t, b.login("admin@test.com", "Admin123"), "/admin/dashboard")
	tok := b.token("/admin/dashboard")

	res, _ := b.post("/logout", url.Values{"csrf_token": {tok}})
	wantRedirect(t, res, "/login")
	res, _ = b.get("/admin/dashboard")
	wantRedirect(t, res, "/login")
}
