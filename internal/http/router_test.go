package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"placementhub/internal/app"
	"placementhub/internal/common"
	"placementhub/internal/domain/admin"
	"placementhub/internal/domain/analytics"
	"placementhub/internal/domain/experience"
	"placementhub/internal/domain/update"
	"placementhub/internal/domain/user"
	"placementhub/internal/http/handlers"
	"placementhub/internal/http/metrics"
	httpmw "placementhub/internal/http/middleware"
	"placementhub/internal/moderation"
	"placementhub/internal/security"
)

type memExperienceRepo struct {
	mu    sync.Mutex
	items map[common.UUID]experience.Experience
}

func (r *memExperienceRepo) Create(ctx context.Context, exp experience.Experience) (*experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp.ID = common.NewUUID()
	exp.CreatedAt = time.Now().UTC()
	exp.UpdatedAt = exp.CreatedAt
	r.items[exp.ID] = exp
	return &exp, nil
}

func (r *memExperienceRepo) Update(ctx context.Context, exp experience.Experience, expected experience.ApprovalStatus) (*experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[exp.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "experience not found", nil)
	}
	if stored.ApprovalStatus != expected {
		return nil, common.NewError(common.CodeConflict, "experience was modified concurrently", nil)
	}
	r.items[exp.ID] = exp
	return &exp, nil
}

func (r *memExperienceRepo) ChangeStatus(ctx context.Context, id common.UUID, change experience.StatusChange) (*experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "experience not found", nil)
	}
	if stored.ApprovalStatus != change.Expected {
		return nil, common.NewError(common.CodeConflict, "experience was modified concurrently", nil)
	}
	stored.ApprovalStatus = change.Next
	stored.RejectionReason = change.RejectionReason
	stored.ApprovedAt = change.ApprovedAt
	stored.ApprovedBy = change.ApprovedBy
	r.items[id] = stored
	return &stored, nil
}

func (r *memExperienceRepo) GetByID(ctx context.Context, id common.UUID) (*experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "experience not found", nil)
	}
	return &stored, nil
}

func (r *memExperienceRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, exp := range r.items {
		if exp.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *memExperienceRepo) ListApproved(ctx context.Context, limit, offset int) ([]experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []experience.Experience{}
	for _, exp := range r.items {
		if exp.ApprovalStatus == experience.StatusApproved {
			items = append(items, exp)
		}
	}
	return items, nil
}

func (r *memExperienceRepo) ListAll(ctx context.Context, limit, offset int) ([]experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []experience.Experience{}
	for _, exp := range r.items {
		items = append(items, exp)
	}
	return items, nil
}

func (r *memExperienceRepo) ListByOwner(ctx context.Context, ownerID string) ([]experience.Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []experience.Experience{}
	for _, exp := range r.items {
		if exp.OwnerID == ownerID {
			items = append(items, exp)
		}
	}
	return items, nil
}

func (r *memExperienceRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return common.NewError(common.CodeNotFound, "experience not found", nil)
	}
	delete(r.items, id)
	return nil
}

type memUpdateRepo struct {
	mu    sync.Mutex
	items map[common.UUID]update.Update
}

func (r *memUpdateRepo) Create(ctx context.Context, u update.Update) (*update.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = common.NewUUID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.items[u.ID] = u
	return &u, nil
}

func (r *memUpdateRepo) GetByID(ctx context.Context, id common.UUID) (*update.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "update not found", nil)
	}
	return &stored, nil
}

func (r *memUpdateRepo) ListActive(ctx context.Context, limit, offset int) ([]update.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []update.Update{}
	for _, u := range r.items {
		if u.IsActive {
			items = append(items, u)
		}
	}
	return items, nil
}

func (r *memUpdateRepo) ListAll(ctx context.Context, limit, offset int) ([]update.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []update.Update{}
	for _, u := range r.items {
		items = append(items, u)
	}
	return items, nil
}

func (r *memUpdateRepo) ListAutoApprovalCandidates(ctx context.Context, cutoff time.Time) ([]update.Update, error) {
	return nil, nil
}

func (r *memUpdateRepo) SetActive(ctx context.Context, id common.UUID, from, to bool) (*update.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "update not found", nil)
	}
	if stored.IsActive != from {
		return nil, common.NewError(common.CodeConflict, "update was modified concurrently", nil)
	}
	stored.IsActive = to
	r.items[id] = stored
	return &stored, nil
}

func (r *memUpdateRepo) SaveModeration(ctx context.Context, id common.UUID, snapshot update.AIModeration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return common.NewError(common.CodeNotFound, "update not found", nil)
	}
	stored.AIModeration = snapshot
	r.items[id] = stored
	return nil
}

func (r *memUpdateRepo) ActivateAutoApproved(ctx context.Context, id common.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return false, common.NewError(common.CodeNotFound, "update not found", nil)
	}
	if stored.IsActive || stored.ManuallyReviewed || stored.AutoApproved {
		return false, nil
	}
	stored.IsActive = true
	stored.AutoApproved = true
	r.items[id] = stored
	return true, nil
}

func (r *memUpdateRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type memAdminRepo struct {
	mu     sync.Mutex
	emails map[string]string
}

func (r *memAdminRepo) Exists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.emails[email]
	return ok, nil
}

func (r *memAdminRepo) Add(ctx context.Context, email, addedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[email] = addedBy
	return nil
}

func (r *memAdminRepo) Remove(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.emails, email)
	return nil
}

func (r *memAdminRepo) List(ctx context.Context) ([]admin.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := []admin.Entry{}
	for email, addedBy := range r.emails {
		entries = append(entries, admin.Entry{Email: email, AddedBy: addedBy})
	}
	return entries, nil
}

type memAnalytics struct{}

func (memAnalytics) Create(ctx context.Context, event analytics.Event) error { return nil }

type offlineAI struct{}

func (offlineAI) Configured() bool { return false }
func (offlineAI) ModerateContent(ctx context.Context, text string) (moderation.Verdict, error) {
	return moderation.Verdict{}, nil
}
func (offlineAI) ExtractUpdateInfo(ctx context.Context, text string) (moderation.Draft, error) {
	return moderation.Draft{}, nil
}

type routerFixture struct {
	handler http.Handler
	jwt     *security.JWTProvider
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	expRepo := &memExperienceRepo{items: map[common.UUID]experience.Experience{}}
	updRepo := &memUpdateRepo{items: map[common.UUID]update.Update{}}
	admRepo := &memAdminRepo{emails: map[string]string{}}

	jwt := security.NewJWTProvider("router-test-secret")
	directory := admin.NewAllowList("cell@example.edu", admRepo)
	experienceService := app.NewExperienceService(expRepo, memAnalytics{})
	updateService := app.NewUpdateService(updRepo, offlineAI{}, memAnalytics{}, nil, 24*time.Hour)
	collector := metrics.NewCollector()

	handler := NewRouter(RouterDependencies{
		ExperienceHandler: handlers.NewExperienceHandler(experienceService, nil),
		UpdateHandler:     handlers.NewUpdateHandler(updateService),
		AdminHandler:      handlers.NewAdminHandler(directory, admRepo),
		MetricsHandler:    handlers.NewMetricsHandler(collector),
		AuthMiddleware:    httpmw.NewAuthMiddleware(jwt),
		AdminDirectory:    directory,
		Metrics:           collector,
		RequestTimeout:    5 * time.Second,
	})
	return &routerFixture{handler: handler, jwt: jwt}
}

func (f *routerFixture) token(t *testing.T, identity user.Identity) string {
	t.Helper()
	token, _, err := f.jwt.Generate(identity, time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewBuffer(encoded)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, req)
	return recorder
}

var (
	studentIdentity = user.Identity{ExternalID: "stu-1", Name: "Asha", Email: "asha@example.edu"}
	adminIdentity   = user.Identity{ExternalID: "adm-1", Name: "Placement Cell", Email: "cell@example.edu"}
)

func experienceBody() map[string]any {
	return map[string]any{
		"company":         "Initech",
		"graduation_year": 2026,
		"body":            "Two DSA rounds and a system design discussion.",
		"rounds":          []map[string]string{{"name": "Online test"}},
	}
}

func TestRouterPublicEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	if rec := f.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/experiences", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("GET /experiences = %d, want 200", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/updates", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("GET /updates = %d, want 200", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "placementhub_requests_total") {
		t.Fatalf("GET /metrics = %d, body %q", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d, want 404", rec.Code)
	}
}

func TestRouterRequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t)

	if rec := f.do(t, http.MethodPost, "/experiences", "", experienceBody()); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated submit = %d, want 401", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/experiences", "not-a-token", experienceBody()); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token submit = %d, want 401", rec.Code)
	}
}

func TestRouterExperienceLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	studentToken := f.token(t, studentIdentity)
	adminToken := f.token(t, adminIdentity)

	rec := f.do(t, http.MethodPost, "/experiences", studentToken, experienceBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit = %d, body %s", rec.Code, rec.Body.String())
	}
	var created experience.Experience
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created experience: %v", err)
	}

	// Pending submissions stay out of the public feed.
	rec = f.do(t, http.MethodGet, "/experiences", "", nil)
	var publicFeed []experience.Experience
	if err := json.Unmarshal(rec.Body.Bytes(), &publicFeed); err != nil {
		t.Fatalf("decode public feed: %v", err)
	}
	if len(publicFeed) != 0 {
		t.Fatalf("public feed already shows %d pending items", len(publicFeed))
	}

	approvePath := "/experiences/" + created.ID.String() + "/approve"
	if rec := f.do(t, http.MethodPost, approvePath, studentToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("student approve = %d, want 403", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, approvePath, adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("admin approve = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/experiences", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &publicFeed); err != nil {
		t.Fatalf("decode public feed: %v", err)
	}
	if len(publicFeed) != 1 || publicFeed[0].ID != created.ID {
		t.Fatalf("public feed after approval = %d items", len(publicFeed))
	}

	rejectPath := "/experiences/" + created.ID.String() + "/reject"
	if rec := f.do(t, http.MethodPost, rejectPath, adminToken, map[string]string{"reason": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("reject without reason = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/experiences/mine", studentToken, nil)
	var mine []experience.Experience
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode own experiences: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("own listing = %d items, want 1", len(mine))
	}
}

func TestRouterQuotaMapsToConflict(t *testing.T) {
	f := newRouterFixture(t)
	studentToken := f.token(t, studentIdentity)

	for i := 0; i < experience.MaxLivePerUser; i++ {
		if rec := f.do(t, http.MethodPost, "/experiences", studentToken, experienceBody()); rec.Code != http.StatusCreated {
			t.Fatalf("submission %d = %d", i+1, rec.Code)
		}
	}
	if rec := f.do(t, http.MethodPost, "/experiences", studentToken, experienceBody()); rec.Code != http.StatusConflict {
		t.Fatalf("submission over the cap = %d, want 409", rec.Code)
	}
}

func TestRouterUpdatesAreAdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	studentToken := f.token(t, studentIdentity)
	adminToken := f.token(t, adminIdentity)
	body := map[string]any{
		"title":           "Initech campus drive",
		"content":         "Initech visits on Friday.",
		"company_name":    "Initech",
		"priority":        5,
		"skip_moderation": true,
	}

	if rec := f.do(t, http.MethodPost, "/updates", studentToken, body); rec.Code != http.StatusForbidden {
		t.Fatalf("student update post = %d, want 403", rec.Code)
	}
	rec := f.do(t, http.MethodPost, "/updates", adminToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin update post = %d, body %s", rec.Code, rec.Body.String())
	}
	var created update.Update
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created update: %v", err)
	}
	if !created.IsActive || !created.ManuallyReviewed {
		t.Fatalf("vouched-for update not live: %+v", created)
	}

	rec = f.do(t, http.MethodGet, "/updates", "", nil)
	var feed []update.Update
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("decode update feed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("update feed = %d items, want 1", len(feed))
	}
}

func TestRouterAllowListManagement(t *testing.T) {
	f := newRouterFixture(t)
	adminToken := f.token(t, adminIdentity)
	tpoIdentity := user.Identity{ExternalID: "adm-2", Name: "TPO", Email: "tpo@example.edu"}
	tpoToken := f.token(t, tpoIdentity)

	if rec := f.do(t, http.MethodGet, "/admin/admins", tpoToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("unlisted email reading the allow-list = %d, want 403", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/admin/admins", adminToken, map[string]string{"email": "tpo@example.edu"}); rec.Code != http.StatusCreated {
		t.Fatalf("allow-list add = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/admin/admins", tpoToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("newly listed admin = %d, want 200", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/admin/admins", tpoToken, map[string]string{"email": "cell@example.edu"}); rec.Code != http.StatusForbidden {
		t.Fatalf("removing the super admin = %d, want 403", rec.Code)
	}
}

func TestRouterRejectsMalformedIDs(t *testing.T) {
	f := newRouterFixture(t)
	adminToken := f.token(t, adminIdentity)

	if rec := f.do(t, http.MethodPost, "/experiences/not-a-uuid/approve", adminToken, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id = %d, want 400", rec.Code)
	}
}
