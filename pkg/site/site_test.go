package site_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/render"
	"github.com/goliatone/go-vortex/pkg/renderers/vanilla"
	"github.com/goliatone/go-vortex/pkg/site"
	"github.com/goliatone/go-vortex/pkg/testsupport"
	"github.com/goliatone/go-vortex/pkg/validation"
)

type harness struct {
	site     *site.Site
	server   *httptest.Server
	client   *http.Client
	clock    *testsupport.Clock
	profiles *auth.ProfileStore
}

func newHarness(t *testing.T, options ...site.Option) *harness {
	t.Helper()

	clock := testsupport.NewClock()
	accounts := auth.NewMemoryStore()
	twoFactor := auth.NewTwoFactor(auth.Policy{}, clock.Now)
	sessions, err := auth.NewSessionIssuer("test-secret", time.Hour, clock.Now)
	if err != nil {
		t.Fatalf("session issuer: %v", err)
	}
	profiles := auth.NewProfileStore()

	controller := flow.NewController(testsupport.Registry(t),
		flow.WithClock(clock.Now),
		flow.WithCompleter("signup", auth.SignupCompleter{Store: accounts, Now: clock.Now}),
		flow.WithCompleter("login", auth.LoginCompleter{Store: accounts, TwoFactor: twoFactor}),
		flow.WithCompleter("two-factor", auth.TwoFactorCompleter{TwoFactor: twoFactor, Sessions: sessions}),
		flow.WithCompleter("profile", auth.ProfileCompleter{Profiles: profiles, Now: clock.Now}),
	)

	forms := render.NewRegistry()
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("vanilla renderer: %v", err)
	}
	forms.MustRegister(renderer)

	options = append([]site.Option{site.WithClock(clock.Now)}, options...)
	s, err := site.New(site.Dependencies{
		Flows:     controller,
		Forms:     forms,
		TwoFactor: twoFactor,
		Sessions:  sessions,
	}, options...)
	if err != nil {
		t.Fatalf("new site: %v", err)
	}

	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{site: s, server: server, client: client, clock: clock, profiles: profiles}
}

type response struct {
	status   int
	location string
	body     string
}

func (h *harness) do(t *testing.T, req *http.Request) response {
	t.Helper()
	res, err := h.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return response{status: res.StatusCode, location: res.Header.Get("Location"), body: string(body)}
}

func (h *harness) get(t *testing.T, path string) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return h.do(t, req)
}

func (h *harness) post(t *testing.T, path string, form url.Values) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(t, req)
}

func (h *harness) postJSON(t *testing.T, path string, payload any) response {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(t, req)
}

func (h *harness) cookie(name string) string {
	u, _ := url.Parse(h.server.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func values(m map[string]string) url.Values {
	out := url.Values{}
	for k, v := range m {
		out.Set(k, v)
	}
	return out
}

func expectStatus(t *testing.T, res response, status int) {
	t.Helper()
	if res.status != status {
		t.Fatalf("expected status %d, got %d (location %q)\n%s", status, res.status, res.location, res.body)
	}
}

func expectRedirect(t *testing.T, res response, location string) {
	t.Helper()
	if res.status != http.StatusSeeOther || res.location != location {
		t.Fatalf("expected 303 to %q, got %d to %q\n%s", location, res.status, res.location, res.body)
	}
}

func assertContains(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(body, part) {
			t.Errorf("expected body to contain %q\n%s", part, body)
		}
	}
}

func assertNotContains(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if strings.Contains(body, part) {
			t.Errorf("expected body to omit %q\n%s", part, body)
		}
	}
}

func signup(t *testing.T, h *harness) {
	t.Helper()
	expectRedirect(t, h.post(t, "/signup", values(testsupport.ValidSignup())), "/complete-profile")
}

func login(t *testing.T, h *harness) {
	t.Helper()
	expectRedirect(t, h.post(t, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"Abcdefg1!"},
	}), "/login/verify")
	expectRedirect(t, h.post(t, "/login/verify", url.Values{"code": {"123456"}}), "/complete-profile")
}

func TestLanding(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/")

	expectStatus(t, res, http.StatusOK)
	assertContains(t, res.body,
		`data-theme="dark"`,
		`href="/assets/`+vanilla.StylesheetName+`"`,
		`--vx-accent-green: #4ade80;`,
		`href="/login"`,
		`href="/signup"`,
		`<title>Trade Smarter | Vortex</title>`,
	)
}

func TestThemeOptions(t *testing.T) {
	selector, err := site.NewThemeSelector(site.VortexManifest())
	if err != nil {
		t.Fatalf("theme selector: %v", err)
	}
	h := newHarness(t, site.WithThemeSelector(selector), site.WithTheme(site.DefaultTheme, site.VariantLight))

	res := h.get(t, "/")
	expectStatus(t, res, http.StatusOK)
	assertContains(t, res.body, `data-theme="light"`)
}

func TestUnregisteredFormRenderer(t *testing.T) {
	_, err := site.New(site.Dependencies{
		Flows: flow.NewController(testsupport.Registry(t)),
		Forms: render.NewRegistry(),
	}, site.WithFormRenderer("pdf"))
	if err == nil || !strings.Contains(err.Error(), `form renderer "pdf" is not registered`) {
		t.Fatalf("expected unregistered renderer error, got %v", err)
	}
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/nowhere")

	expectStatus(t, res, http.StatusNotFound)
	assertContains(t, res.body, "Page not found")
}

func TestAssetsServed(t *testing.T) {
	h := newHarness(t)
	res := h.get(t, "/assets/"+vanilla.StylesheetName)

	expectStatus(t, res, http.StatusOK)
	assertContains(t, res.body, "--vx-")
}

func TestSignupFlow(t *testing.T) {
	h := newHarness(t)

	page := h.get(t, "/signup")
	expectStatus(t, page, http.StatusOK)
	assertContains(t, page.body, `action="/signup"`, `name="_step" value="1"`, `href="/login"`)

	weak := testsupport.ValidSignup()
	weak["password"], weak["confirmPassword"] = "weak", "weak"
	rejected := h.post(t, "/signup", values(weak))
	expectStatus(t, rejected, http.StatusUnprocessableEntity)
	assertContains(t, rejected.body, "Password must be at least 8 characters", `value="ada@example.com"`)
	assertNotContains(t, rejected.body, `value="weak"`)

	signup(t, h)

	again := h.post(t, "/signup", values(testsupport.ValidSignup()))
	expectStatus(t, again, http.StatusUnprocessableEntity)
	assertContains(t, again.body, "An account with this email already exists")
}

func TestProfileWizard(t *testing.T) {
	h := newHarness(t)
	steps := testsupport.ValidProfile()

	expectRedirect(t, h.post(t, "/complete-profile", values(steps[0])), "/complete-profile")
	second := h.get(t, "/complete-profile")
	assertContains(t, second.body, `name="_step" value="2"`, `value="back"`)

	// A post from a page rendered for step 1 is not applied to step 2.
	stale := values(steps[0])
	stale.Set(render.HiddenStep, "1")
	expectRedirect(t, h.post(t, "/complete-profile", stale), "/complete-profile")
	assertContains(t, h.get(t, "/complete-profile").body, `name="_step" value="2"`)

	expectRedirect(t, h.post(t, "/complete-profile", url.Values{render.HiddenAction: {render.ActionBack}}), "/complete-profile")
	first := h.get(t, "/complete-profile")
	assertContains(t, first.body, `name="_step" value="1"`, "221B Baker Street, Mumbai")

	expectRedirect(t, h.post(t, "/complete-profile", values(steps[0])), "/complete-profile")

	badPAN := values(steps[1])
	badPAN.Set("panNumber", "12AB")
	badPAN.Set(render.HiddenStep, "2")
	expectStatus(t, h.post(t, "/complete-profile", badPAN), http.StatusUnprocessableEntity)

	expectRedirect(t, h.post(t, "/complete-profile", values(steps[1])), "/complete-profile")
	expectRedirect(t, h.post(t, "/complete-profile", values(steps[2])), "/dashboard")

	profile, ok := h.profiles.Get(auth.AnonymousOwner)
	if !ok {
		t.Fatalf("expected a stored profile")
	}
	if diff := cmp.Diff("1234567890", profile.Record["panNumber"]); diff != "" {
		t.Fatalf("pan mismatch (-want +got):\n%s", diff)
	}

	// The finished flow starts over on the next visit.
	assertContains(t, h.get(t, "/complete-profile").body, `name="_step" value="1"`)
}

func TestProfileUpload(t *testing.T) {
	h := newHarness(t)
	steps := testsupport.ValidProfile()
	expectRedirect(t, h.post(t, "/complete-profile", values(steps[0])), "/complete-profile")
	expectRedirect(t, h.post(t, "/complete-profile", values(steps[1])), "/complete-profile")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField(render.HiddenStep, "3")
	part, err := mw.CreateFormFile("aadharFile", "aadhar.pdf")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 demo"))
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/complete-profile", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	expectRedirect(t, h.do(t, req), "/dashboard")

	profile, ok := h.profiles.Get(auth.AnonymousOwner)
	if !ok {
		t.Fatalf("expected a stored profile")
	}
	if ref := profile.Record["aadharFile"]; !strings.HasPrefix(ref, "upload-") {
		t.Fatalf("expected an upload reference, got %q", ref)
	}
}

func TestLoginRequiresChallengeForVerify(t *testing.T) {
	h := newHarness(t)
	expectRedirect(t, h.get(t, "/login/verify"), "/login")
}

func TestLoginWithTwoFactor(t *testing.T) {
	h := newHarness(t)
	signup(t, h)

	wrong := h.post(t, "/login", url.Values{"email": {"ada@example.com"}, "password": {"Wrongpass1!"}})
	expectStatus(t, wrong, http.StatusUnprocessableEntity)
	assertContains(t, wrong.body, "Invalid email or password")

	expectRedirect(t, h.post(t, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"Abcdefg1!"},
	}), "/login/verify")

	verify := h.get(t, "/login/verify")
	expectStatus(t, verify, http.StatusOK)
	assertContains(t, verify.body, "ada@example.com", `value="resend"`)

	expectRedirect(t, h.post(t, "/login/verify", url.Values{render.HiddenAction: {render.ActionResend}}), "/login/verify?resent=1")
	assertContains(t, h.get(t, "/login/verify?resent=1").body, "A new code has been sent")

	short := h.post(t, "/login/verify", url.Values{"code": {"12"}})
	expectStatus(t, short, http.StatusUnprocessableEntity)
	assertContains(t, short.body, "Code must be exactly 6 digits")

	expectRedirect(t, h.post(t, "/login/verify", url.Values{"code": {"123456"}}), "/complete-profile")
	if h.cookie("vortex_session") == "" {
		t.Fatalf("expected a session cookie")
	}

	// The challenge is spent once verified.
	expectRedirect(t, h.get(t, "/login/verify"), "/login")

	landing := h.get(t, "/")
	assertContains(t, landing.body, `href="/dashboard"`)
}

func TestRequireSession(t *testing.T) {
	h := newHarness(t, site.WithRequireSession(true))

	expectRedirect(t, h.get(t, "/dashboard"), "/login")
	expectRedirect(t, h.get(t, "/complete-profile"), "/login")

	signup(t, h)
	login(t, h)

	expectStatus(t, h.get(t, "/dashboard"), http.StatusOK)
	expectRedirect(t, h.post(t, "/complete-profile", values(testsupport.ValidProfile()[0])), "/complete-profile")

	expectRedirect(t, h.get(t, "/logout"), "/")
	expectRedirect(t, h.get(t, "/dashboard"), "/login")
}

func TestInvalidSessionCookieIsCleared(t *testing.T) {
	h := newHarness(t, site.WithRequireSession(true))
	u, _ := url.Parse(h.server.URL)
	h.client.Jar.SetCookies(u, []*http.Cookie{{Name: "vortex_session", Value: "not-a-token", Path: "/"}})

	expectRedirect(t, h.get(t, "/dashboard"), "/login")
	if got := h.cookie("vortex_session"); got != "" {
		t.Fatalf("expected the session cookie to be cleared, got %q", got)
	}
}

func TestDashboardPages(t *testing.T) {
	h := newHarness(t)

	dashboard := h.get(t, "/dashboard")
	expectStatus(t, dashboard, http.StatusOK)
	assertContains(t, dashboard.body,
		`data-widget="balance"`,
		"$480,066.00",
		"+$402.25",
		`data-widget="coins"`,
		`data-open="false"`,
		`href="/dashboard?sidebar=open"`,
		`aria-current="page"`,
	)

	open := h.get(t, "/dashboard?sidebar=open")
	assertContains(t, open.body, `data-open="true"`)

	expectStatus(t, h.get(t, "/investments"), http.StatusOK)
}

func TestAIChat(t *testing.T) {
	h := newHarness(t)

	empty := h.get(t, "/ai")
	expectStatus(t, empty, http.StatusOK)
	assertContains(t, empty.body, "Investment report")

	expectRedirect(t, h.post(t, "/ai", url.Values{"message": {"<b>How is my portfolio?</b>"}}), "/ai")

	chat := h.get(t, "/ai")
	assertContains(t, chat.body,
		`vx-message-user">How is my portfolio?</div>`,
		"analyzing your investment strategy",
	)
	assertNotContains(t, chat.body, "&lt;b&gt;")
}

func TestCommunity(t *testing.T) {
	h := newHarness(t)

	page := h.get(t, "/community?date=10")
	expectStatus(t, page, http.StatusOK)
	assertContains(t, page.body, `aria-current="date">10</a>`, "Anyone else watching the ETH/USD divergence this week?")

	fallback := h.get(t, "/community?date=99")
	assertContains(t, fallback.body, `aria-current="date">16</a>`)

	empty := h.post(t, "/community", url.Values{"body": {"   "}, "date": {"10"}})
	expectStatus(t, empty, http.StatusUnprocessableEntity)
	assertContains(t, empty.body, "Write something before posting")

	expectRedirect(t, h.post(t, "/community", url.Values{"body": {"Buying the dip"}, "date": {"10"}}), "/community?date=10")
	assertContains(t, h.get(t, "/community").body, "Buying the dip")
}

func TestVisitorSweep(t *testing.T) {
	h := newHarness(t, site.WithIdleTTL(time.Minute))

	expectRedirect(t, h.post(t, "/complete-profile", values(testsupport.ValidProfile()[0])), "/complete-profile")
	if got := h.site.Sweep(); got != 0 {
		t.Fatalf("expected no idle visitors, got %d", got)
	}

	h.clock.Advance(2 * time.Minute)
	if got := h.site.Sweep(); got != 1 {
		t.Fatalf("expected one idle visitor, got %d", got)
	}
	assertContains(t, h.get(t, "/complete-profile").body, `name="_step" value="1"`)
}

func TestAPIFlows(t *testing.T) {
	h := newHarness(t)

	list := h.get(t, "/api/flows")
	expectStatus(t, list, http.StatusOK)
	var flows struct {
		Flows []string `json:"flows"`
	}
	if err := json.Unmarshal([]byte(list.body), &flows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"login", "profile", "signup", "two-factor"}, flows.Flows); diff != "" {
		t.Fatalf("flows mismatch (-want +got):\n%s", diff)
	}

	def := h.get(t, "/api/flows/profile")
	expectStatus(t, def, http.StatusOK)
	assertContains(t, def.body, `"path":"/complete-profile"`)

	expectStatus(t, h.get(t, "/api/flows/unknown"), http.StatusNotFound)
}

func TestAPIValidate(t *testing.T) {
	h := newHarness(t)

	res := h.postJSON(t, "/api/flows/signup/validate", map[string]string{"field": "password", "value": "weak"})
	expectStatus(t, res, http.StatusOK)
	var got validation.Result
	if err := json.Unmarshal([]byte(res.body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := validation.Result{Field: "password", Valid: false, Message: "Password must be at least 8 characters"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	// Confirmation is only checked on submit.
	confirm := h.postJSON(t, "/api/flows/signup/validate", map[string]string{"field": "confirmPassword", "value": "Other1!aa"})
	assertContains(t, confirm.body, `"valid":true`)

	expectStatus(t, h.postJSON(t, "/api/flows/signup/validate", map[string]string{"field": "nope", "value": "x"}), http.StatusBadRequest)

	invalid := h.postJSON(t, "/api/flows/signup/validate", map[string]string{"value": "x"})
	expectStatus(t, invalid, http.StatusBadRequest)
	assertContains(t, invalid.body, `"error":"invalid request"`)
}

type apiTransition struct {
	Instance string `json:"instance"`
	flow.Transition
}

func decodeTransition(t *testing.T, res response) apiTransition {
	t.Helper()
	var tr apiTransition
	if err := json.Unmarshal([]byte(res.body), &tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return tr
}

func TestAPISubmit(t *testing.T) {
	h := newHarness(t)

	weak := testsupport.ValidSignup()
	weak["password"], weak["confirmPassword"] = "weak", "weak"
	rejected := h.postJSON(t, "/api/flows/signup/submit", map[string]any{"values": weak})
	expectStatus(t, rejected, http.StatusUnprocessableEntity)
	tr := decodeTransition(t, rejected)
	if tr.Outcome != flow.OutcomeRejected || tr.State.Step != 1 || !tr.Errors.Has("password") || tr.Instance == "" {
		t.Fatalf("unexpected transition %+v", tr)
	}
	assertNotContains(t, rejected.body, `"weak"`)

	advanced := h.postJSON(t, "/api/flows/profile/submit", map[string]any{"values": testsupport.ValidProfile()[0]})
	expectStatus(t, advanced, http.StatusOK)
	tr = decodeTransition(t, advanced)
	if tr.Outcome != flow.OutcomeAdvanced || tr.State.Step != 2 || tr.Instance == "" {
		t.Fatalf("unexpected transition %+v", tr)
	}
	instance := tr.Instance

	back := h.postJSON(t, "/api/flows/profile/back", map[string]any{"instance": instance})
	expectStatus(t, back, http.StatusOK)
	var prev struct {
		Instance string     `json:"instance"`
		State    flow.State `json:"state"`
	}
	if err := json.Unmarshal([]byte(back.body), &prev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if prev.Instance != instance || prev.State.Step != 1 || prev.State.Record["country"] != "India" {
		t.Fatalf("unexpected state %+v", prev)
	}

	again := h.postJSON(t, "/api/flows/profile/submit", map[string]any{"instance": instance, "values": testsupport.ValidProfile()[0]})
	expectStatus(t, again, http.StatusOK)
	if tr := decodeTransition(t, again); tr.Instance != instance || tr.State.Step != 2 {
		t.Fatalf("unexpected transition %+v", tr)
	}

	completed := h.postJSON(t, "/api/flows/signup/submit", map[string]any{"values": testsupport.ValidSignup()})
	expectStatus(t, completed, http.StatusOK)
	assertContains(t, completed.body, `"outcome":"completed"`, `"redirect":"/complete-profile"`)
	assertNotContains(t, completed.body, "Abcdefg1!", `"instance"`)

	// An instance only holds the flow it was opened for.
	wrongFlow := h.postJSON(t, "/api/flows/signup/submit", map[string]any{"instance": instance, "values": testsupport.ValidSignup()})
	expectStatus(t, wrongFlow, http.StatusNotFound)
	expectStatus(t, h.postJSON(t, "/api/flows/profile/back", map[string]any{"instance": "missing"}), http.StatusNotFound)
}

func TestAPISubmitIgnoresClientState(t *testing.T) {
	h := newHarness(t)

	forged := h.postJSON(t, "/api/flows/profile/submit", map[string]any{
		"state": map[string]any{
			"flow":   "profile",
			"step":   3,
			"record": map[string]string{"birthdate": "2020-01-01", "panNumber": "abc"},
		},
		"values": testsupport.ValidProfile()[2],
	})
	expectStatus(t, forged, http.StatusUnprocessableEntity)
	tr := decodeTransition(t, forged)
	if tr.Outcome != flow.OutcomeRejected || tr.State.Step != 1 || !tr.Errors.Has("country") {
		t.Fatalf("unexpected transition %+v", tr)
	}
	if _, ok := h.profiles.Get(auth.AnonymousOwner); ok {
		t.Fatalf("expected no profile to be stored")
	}

	// Later steps only open once the earlier ones pass.
	underage := testsupport.ValidProfile()[0]
	underage["birthdate"] = "2020-01-01"
	res := h.postJSON(t, "/api/flows/profile/submit", map[string]any{"instance": tr.Instance, "values": underage})
	expectStatus(t, res, http.StatusUnprocessableEntity)
	if got := decodeTransition(t, res); got.State.Step != 1 || !got.Errors.Has("birthdate") {
		t.Fatalf("unexpected transition %+v", got)
	}
}

func TestAPIChatAndPosts(t *testing.T) {
	h := newHarness(t)

	res := h.postJSON(t, "/api/chat", map[string]string{"message": "Hello"})
	expectStatus(t, res, http.StatusOK)
	var chat struct {
		Conversation string `json:"conversation"`
		Messages     []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal([]byte(res.body), &chat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if chat.Conversation == "" || len(chat.Messages) != 2 || chat.Messages[0].Content != "Hello" {
		t.Fatalf("unexpected chat response %+v", chat)
	}

	expectStatus(t, h.postJSON(t, "/api/community/posts", map[string]string{"body": ""}), http.StatusBadRequest)

	created := h.postJSON(t, "/api/community/posts", map[string]string{"author": "Ada", "body": "Holding BTC"})
	expectStatus(t, created, http.StatusCreated)
	assertContains(t, created.body, `"author":"Ada"`)

	list := h.get(t, "/api/community/posts")
	assertContains(t, list.body, "Holding BTC")
}

func TestAPIMisc(t *testing.T) {
	h := newHarness(t)

	countries := h.get(t, "/api/countries?q=ind")
	expectStatus(t, countries, http.StatusOK)
	assertContains(t, countries.body, "India")

	spec := h.get(t, "/openapi.json")
	expectStatus(t, spec, http.StatusOK)
	assertContains(t, spec.body, "Vortex API")

	dashboard := h.get(t, "/api/dashboard")
	expectStatus(t, dashboard, http.StatusOK)
	assertContains(t, dashboard.body, `"name":"balance"`, "$480,066.00")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "passport.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("png"))
	_ = mw.Close()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/api/uploads", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	upload := h.do(t, req)
	expectStatus(t, upload, http.StatusCreated)
	assertContains(t, upload.body, `"ref":"upload-`, `"name":"passport.png"`, `"size":3`)
}

func uploadRequest(t *testing.T, h *harness, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "passport.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(bytes.Repeat([]byte{'x'}, size)); err != nil {
		t.Fatal(err)
	}
	_ = mw.Close()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/api/uploads", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAPIUploadLimits(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	h := newHarness(t)

	// Just above the in-memory budget, so the part spills to a temp file.
	over := h.do(t, uploadRequest(t, h, auth.MaxUploadBytes+(512<<10)))
	expectStatus(t, over, http.StatusRequestEntityTooLarge)

	// Past the request body cap.
	huge := h.do(t, uploadRequest(t, h, 12<<20))
	expectStatus(t, huge, http.StatusRequestEntityTooLarge)

	// The profile page parses its own multipart form.
	steps := testsupport.ValidProfile()
	expectRedirect(t, h.post(t, "/complete-profile", values(steps[0])), "/complete-profile")
	expectRedirect(t, h.post(t, "/complete-profile", values(steps[1])), "/complete-profile")
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField(render.HiddenStep, "3")
	part, err := mw.CreateFormFile("aadharFile", "aadhar.pdf")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(bytes.Repeat([]byte{'x'}, auth.MaxUploadBytes+(512<<10)))
	_ = mw.Close()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/complete-profile", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	expectStatus(t, h.do(t, req), http.StatusRequestEntityTooLarge)

	left, err := filepath.Glob(filepath.Join(tmp, "multipart-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("expected multipart temp files to be removed, found %v", left)
	}
}
