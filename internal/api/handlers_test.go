// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/airlog/internal/aggregator"
	"github.com/tomtom215/airlog/internal/auth"
	"github.com/tomtom215/airlog/internal/config"
	"github.com/tomtom215/airlog/internal/database"
	"github.com/tomtom215/airlog/internal/models"
	"github.com/tomtom215/airlog/internal/notifier"
	"github.com/tomtom215/airlog/internal/websocket"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	db     *database.DB
	jwt    *auth.JWTManager
	router http.Handler
}

// newTestEnv wires the full stack against an in-memory database, with a
// seeded user directory: two admins, one organizer, one participant.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Security: config.SecurityConfig{
			AuthMode:        "jwt",
			JWTSecret:       testJWTSecret,
			AdminUsername:   "admin",
			AdminPassword:   "correct-horse-battery",
			SessionTimeout:  time.Hour,
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
		Analytics: config.AnalyticsConfig{
			CacheTTL:        time.Minute,
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
		Notifications: config.NotificationsConfig{
			HandshakeGrace:  time.Second,
			WriteTimeout:    time.Second,
			BroadcastBuffer: 16,
		},
	}

	db, err := database.New(&config.DatabaseConfig{Path: ""})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	users := []models.User{
		{ID: "admin-1", Name: "Ada Admin", Email: "ada@example.org", Role: models.RoleAdmin, IsActive: true},
		{ID: "admin-2", Name: "Bela Admin", Email: "bela@example.org", Role: models.RoleAdmin, IsActive: true},
		{ID: "org-1", Name: "Olga Organizer", Email: "olga@example.org", Role: models.RoleOrganizer, IsActive: true},
		{ID: "part-1", Name: "Pavel Participant", Email: "pavel@example.org", Role: models.RoleParticipant, IsActive: true},
	}
	for i := range users {
		if err := db.UpsertUser(t.Context(), &users[i]); err != nil {
			t.Fatalf("seed user %s: %v", users[i].ID, err)
		}
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	credentials, err := auth.NewCredentials(&cfg.Security)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}

	hub := websocket.NewHub()
	analytics := aggregator.New(db, cfg.Analytics)
	notifierSvc := notifier.New(db, nil)

	handler := NewHandler(db, analytics, notifierSvc, hub, cfg, jwtManager, credentials)
	router := NewRouter(handler, auth.NewMiddleware(jwtManager, false), cfg).Setup()

	return &testEnv{db: db, jwt: jwtManager, router: router}
}

func (env *testEnv) token(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	token, err := env.jwt.GenerateToken(userID, userID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Pagination *PaginationMeta `json:"pagination"`
	} `json:"meta"`
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var resp envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, resp
}

func decodeData(t *testing.T, raw json.RawMessage, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode data %q: %v", string(raw), err)
	}
}

// mangle re-reads a UTF-8 string as Latin-1, producing the mojibake form that
// misbehaving upload clients send.
func mangle(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		b.WriteRune(rune(c))
	}
	return b.String()
}

func uploadBody(storedName, originalName, mediaType, targetKind, targetID string, size int64) map[string]interface{} {
	return map[string]interface{}{
		"stored_name":   storedName,
		"original_name": originalName,
		"media_type":    mediaType,
		"size_bytes":    size,
		"target_kind":   targetKind,
		"target_id":     targetID,
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": "admin", "password": "correct-horse-battery"})
	if status != http.StatusOK || !resp.Success {
		t.Fatalf("login failed: status=%d resp=%+v", status, resp)
	}
	var data struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	decodeData(t, resp.Data, &data)
	if data.Token == "" {
		t.Fatal("expected a token")
	}
	if data.ExpiresIn != 3600 {
		t.Fatalf("expires_in = %d, want 3600", data.ExpiresIn)
	}

	// The issued token must work against a protected endpoint.
	status, _ = env.do(t, http.MethodGet, "/api/v1/files?entity_type=team&entity_id=t1", data.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("issued token rejected: status=%d", status)
	}

	status, resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": "admin", "password": "wrong"})
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong password: status=%d, want 401", status)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeUnauthorized {
		t.Fatalf("wrong password error = %+v", resp.Error)
	}

	status, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": "admin"})
	if status != http.StatusBadRequest {
		t.Fatalf("missing password: status=%d, want 400", status)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodGet, "/api/v1/analytics/overview", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d, want 401", status)
	}
	if resp.Success {
		t.Fatal("expected failure envelope")
	}

	status, _ = env.do(t, http.MethodGet, "/api/v1/analytics/overview", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("garbage token: status=%d, want 401", status)
	}
}

func TestUploadClassifiesAndRepairsFilename(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "admin-1", models.RoleAdmin)

	// A document uploaded against an episode lands in the script bucket, and
	// the Latin-1-mangled name is repaired at intake.
	body := uploadBody("a1b2c3.pdf", mangle("эфир.pdf"), "application/pdf", "episode", "ep-9", 2048)
	status, resp := env.do(t, http.MethodPost, "/api/v1/files", token, body)
	if status != http.StatusCreated || !resp.Success {
		t.Fatalf("upload: status=%d resp=%+v", status, resp)
	}

	var file models.FileRecord
	decodeData(t, resp.Data, &file)
	if file.EntityType != models.EntityScript {
		t.Fatalf("entity_type = %s, want script", file.EntityType)
	}
	if file.OriginalName != "эфир.pdf" {
		t.Fatalf("original_name = %q, want repaired UTF-8", file.OriginalName)
	}
	if file.EntityID != "ep-9" {
		t.Fatalf("entity_id = %q, want ep-9", file.EntityID)
	}
	if !file.IsActive {
		t.Fatal("new file should be active")
	}
	// The uploader identity comes from the directory row, not the token.
	if file.UploaderEmail != "ada@example.org" {
		t.Fatalf("uploader_email = %q", file.UploaderEmail)
	}

	// The upload event is queryable through the activity log.
	status, resp = env.do(t, http.MethodGet, "/api/v1/analytics/events?timeframe=24h", token, nil)
	if status != http.StatusOK {
		t.Fatalf("events: status=%d", status)
	}
	var log models.EventLog
	decodeData(t, resp.Data, &log)
	if log.TotalCount != 1 || len(log.Rows) != 1 {
		t.Fatalf("event log = %+v, want 1 row", log)
	}
	if log.Rows[0].Kind != models.EventUpload || log.Rows[0].FileName != "эфир.pdf" {
		t.Fatalf("event row = %+v", log.Rows[0])
	}
}

func TestUploadQuotaForRestrictedRole(t *testing.T) {
	env := newTestEnv(t)
	participant := env.token(t, "part-1", models.RoleParticipant)

	body := uploadBody("take1.mp3", "take1.mp3", "audio/mpeg", "team", "team-4", 1024)
	status, _ := env.do(t, http.MethodPost, "/api/v1/files", participant, body)
	if status != http.StatusCreated {
		t.Fatalf("first upload: status=%d, want 201", status)
	}

	body = uploadBody("take2.mp3", "take2.mp3", "audio/mpeg", "team", "team-4", 1024)
	status, resp := env.do(t, http.MethodPost, "/api/v1/files", participant, body)
	if status != http.StatusConflict {
		t.Fatalf("second upload: status=%d, want 409", status)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeQuotaExceeded {
		t.Fatalf("error = %+v, want %s", resp.Error, ErrCodeQuotaExceeded)
	}

	// Privileged roles have no quota.
	admin := env.token(t, "admin-1", models.RoleAdmin)
	for i := 0; i < 3; i++ {
		body = uploadBody(fmt.Sprintf("adm%d.mp3", i), fmt.Sprintf("adm%d.mp3", i), "audio/mpeg", "team", "team-4", 10)
		if status, _ := env.do(t, http.MethodPost, "/api/v1/files", admin, body); status != http.StatusCreated {
			t.Fatalf("admin upload %d: status=%d", i, status)
		}
	}
}

func TestQuotaFreedBySoftDelete(t *testing.T) {
	env := newTestEnv(t)
	participant := env.token(t, "part-1", models.RoleParticipant)
	admin := env.token(t, "admin-1", models.RoleAdmin)

	body := uploadBody("entry.mp4", "entry.mp4", "video/mp4", "team", "team-1", 4096)
	status, resp := env.do(t, http.MethodPost, "/api/v1/files", participant, body)
	if status != http.StatusCreated {
		t.Fatalf("upload: status=%d", status)
	}
	var file models.FileRecord
	decodeData(t, resp.Data, &file)

	// Deactivating the file frees the slot; the quota counts active files.
	inactive := false
	status, _ = env.do(t, http.MethodPatch, "/api/v1/files/"+file.ID.String(), admin,
		UpdateFileRequest{IsActive: &inactive})
	if status != http.StatusOK {
		t.Fatalf("deactivate: status=%d", status)
	}

	body = uploadBody("retake.mp4", "retake.mp4", "video/mp4", "team", "team-1", 4096)
	if status, _ := env.do(t, http.MethodPost, "/api/v1/files", participant, body); status != http.StatusCreated {
		t.Fatalf("re-upload after delete: status=%d, want 201", status)
	}
}

func TestRecordDownload(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", models.RoleAdmin)

	body := uploadBody("show.mp3", "show.mp3", "audio/mpeg", "episode", "ep-1", 777)
	status, resp := env.do(t, http.MethodPost, "/api/v1/files", admin, body)
	if status != http.StatusCreated {
		t.Fatalf("upload: status=%d", status)
	}
	var file models.FileRecord
	decodeData(t, resp.Data, &file)

	status, resp = env.do(t, http.MethodPost, "/api/v1/files/"+file.ID.String()+"/downloads", admin,
		RecordDownloadRequest{DurationMs: 1500})
	if status != http.StatusCreated {
		t.Fatalf("download: status=%d resp=%+v", status, resp)
	}
	var event models.ActivityEvent
	decodeData(t, resp.Data, &event)
	if event.Kind != models.EventDownload {
		t.Fatalf("kind = %s, want download", event.Kind)
	}
	if event.SizeBytes != 777 || event.Outcome != models.OutcomeCompleted {
		t.Fatalf("event = %+v", event)
	}

	// Unknown file.
	status, _ = env.do(t, http.MethodPost,
		"/api/v1/files/00000000-0000-0000-0000-000000000001/downloads", admin,
		RecordDownloadRequest{})
	if status != http.StatusNotFound {
		t.Fatalf("unknown file: status=%d, want 404", status)
	}

	// Soft-deleted files no longer accept downloads.
	inactive := false
	if status, _ = env.do(t, http.MethodPatch, "/api/v1/files/"+file.ID.String(), admin,
		UpdateFileRequest{IsActive: &inactive}); status != http.StatusOK {
		t.Fatalf("deactivate: status=%d", status)
	}
	status, _ = env.do(t, http.MethodPost, "/api/v1/files/"+file.ID.String()+"/downloads", admin,
		RecordDownloadRequest{})
	if status != http.StatusNotFound {
		t.Fatalf("download of inactive file: status=%d, want 404", status)
	}
}

func TestUpdateFileRequiresPrivilegedRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", models.RoleAdmin)
	organizer := env.token(t, "org-1", models.RoleOrganizer)
	participant := env.token(t, "part-1", models.RoleParticipant)

	body := uploadBody("doc.pdf", "doc.pdf", "application/pdf", "script", "s-1", 10)
	status, resp := env.do(t, http.MethodPost, "/api/v1/files", admin, body)
	if status != http.StatusCreated {
		t.Fatalf("upload: status=%d", status)
	}
	var file models.FileRecord
	decodeData(t, resp.Data, &file)

	inactive := false
	status, resp = env.do(t, http.MethodPatch, "/api/v1/files/"+file.ID.String(), participant,
		UpdateFileRequest{IsActive: &inactive})
	if status != http.StatusForbidden {
		t.Fatalf("participant patch: status=%d, want 403", status)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeForbidden {
		t.Fatalf("error = %+v", resp.Error)
	}

	status, resp = env.do(t, http.MethodPatch, "/api/v1/files/"+file.ID.String(), organizer,
		UpdateFileRequest{IsActive: &inactive})
	if status != http.StatusOK {
		t.Fatalf("organizer patch: status=%d resp=%+v", status, resp)
	}
	var updated models.FileRecord
	decodeData(t, resp.Data, &updated)
	if updated.IsActive {
		t.Fatal("file should be inactive")
	}

	// Soft-deleted files disappear from the listing.
	status, resp = env.do(t, http.MethodGet, "/api/v1/files?entity_type=script&entity_id=s-1", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("list: status=%d", status)
	}
	var files []models.FileRecord
	decodeData(t, resp.Data, &files)
	if len(files) != 0 {
		t.Fatalf("listing = %d files, want 0", len(files))
	}

	// Empty patch is rejected.
	status, _ = env.do(t, http.MethodPatch, "/api/v1/files/"+file.ID.String(), admin,
		UpdateFileRequest{})
	if status != http.StatusBadRequest {
		t.Fatalf("empty patch: status=%d, want 400", status)
	}
}

func TestSubmissionUploadNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	participant := env.token(t, "part-1", models.RoleParticipant)
	admin1 := env.token(t, "admin-1", models.RoleAdmin)
	admin2 := env.token(t, "admin-2", models.RoleAdmin)
	organizer := env.token(t, "org-1", models.RoleOrganizer)

	body := uploadBody("entry.zip", "entry.zip", "application/zip", "submission", "hack-1", 9000)
	status, _ := env.do(t, http.MethodPost, "/api/v1/files", participant, body)
	if status != http.StatusCreated {
		t.Fatalf("submission upload: status=%d", status)
	}

	// Non-admins cannot reach the inbox at all.
	status, _ = env.do(t, http.MethodGet, "/api/v1/notifications/", organizer, nil)
	if status != http.StatusForbidden {
		t.Fatalf("organizer inbox: status=%d, want 403", status)
	}

	// Each admin got their own durable row.
	var firstID string
	for _, token := range []string{admin1, admin2} {
		status, resp := env.do(t, http.MethodGet, "/api/v1/notifications/", token, nil)
		if status != http.StatusOK {
			t.Fatalf("inbox: status=%d", status)
		}
		var rows []models.Notification
		decodeData(t, resp.Data, &rows)
		if len(rows) != 1 {
			t.Fatalf("inbox rows = %d, want 1", len(rows))
		}
		if rows[0].Type != models.NotificationSubmissionUploaded {
			t.Fatalf("type = %s", rows[0].Type)
		}
		if rows[0].ActorID != "part-1" {
			t.Fatalf("actor_id = %s", rows[0].ActorID)
		}
		if token == admin1 {
			firstID = rows[0].ID.String()
		}
	}

	// Read state is per recipient.
	status, _ = env.do(t, http.MethodPost, "/api/v1/notifications/"+firstID+"/read", admin1, nil)
	if status != http.StatusOK {
		t.Fatalf("mark read: status=%d", status)
	}

	var count struct {
		Unread int `json:"unread"`
	}
	_, resp := env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", admin1, nil)
	decodeData(t, resp.Data, &count)
	if count.Unread != 0 {
		t.Fatalf("admin-1 unread = %d, want 0", count.Unread)
	}
	_, resp = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count", admin2, nil)
	decodeData(t, resp.Data, &count)
	if count.Unread != 1 {
		t.Fatalf("admin-2 unread = %d, want 1", count.Unread)
	}

	// One admin cannot delete another's row.
	status, _ = env.do(t, http.MethodDelete, "/api/v1/notifications/"+firstID, admin2, nil)
	if status != http.StatusNotFound {
		t.Fatalf("cross-recipient delete: status=%d, want 404", status)
	}
	status, _ = env.do(t, http.MethodDelete, "/api/v1/notifications/"+firstID, admin1, nil)
	if status != http.StatusOK {
		t.Fatalf("own delete: status=%d", status)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", models.RoleAdmin)
	organizer := env.token(t, "org-1", models.RoleOrganizer)

	body := uploadBody("a.pdf", "a.pdf", "application/pdf", "script", "s-1", 100)
	if status, _ := env.do(t, http.MethodPost, "/api/v1/files", admin, body); status != http.StatusCreated {
		t.Fatal("upload a failed")
	}
	body = uploadBody("b.mp3", "b.mp3", "audio/mpeg", "episode", "ep-1", 300)
	if status, _ := env.do(t, http.MethodPost, "/api/v1/files", organizer, body); status != http.StatusCreated {
		t.Fatal("upload b failed")
	}

	status, resp := env.do(t, http.MethodGet, "/api/v1/analytics/overview?timeframe=24h", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("overview: status=%d", status)
	}
	var overview models.Overview
	decodeData(t, resp.Data, &overview)
	if overview.TotalEvents != 2 || overview.UniqueActors != 2 || overview.TotalBytes != 400 {
		t.Fatalf("overview = %+v", overview)
	}
	if len(overview.TopFiles) != 2 {
		t.Fatalf("top_files = %d, want 2", len(overview.TopFiles))
	}
	if len(overview.HourlyHistogram) != 24 {
		t.Fatalf("hourly buckets = %d, want 24", len(overview.HourlyHistogram))
	}

	status, resp = env.do(t, http.MethodGet, "/api/v1/analytics/users?timeframe=7d&search=olga", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("users: status=%d", status)
	}
	var rollup models.UserRollup
	decodeData(t, resp.Data, &rollup)
	if rollup.TotalCount != 1 || len(rollup.Rows) != 1 || rollup.Rows[0].ActorID != "org-1" {
		t.Fatalf("rollup = %+v", rollup)
	}
	if resp.Meta == nil || resp.Meta.Pagination == nil || resp.Meta.Pagination.Total != 1 {
		t.Fatalf("pagination meta = %+v", resp.Meta)
	}

	// Invalid inputs are 400, not silent defaults.
	if status, _ := env.do(t, http.MethodGet, "/api/v1/analytics/overview?timeframe=1y", admin, nil); status != http.StatusBadRequest {
		t.Fatalf("bad timeframe: status=%d, want 400", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/analytics/events?outcome=bogus", admin, nil); status != http.StatusBadRequest {
		t.Fatalf("bad outcome: status=%d, want 400", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/analytics/events?entity_type=bogus", admin, nil); status != http.StatusBadRequest {
		t.Fatalf("bad entity_type: status=%d, want 400", status)
	}

	// Kind filter narrows the log.
	status, resp = env.do(t, http.MethodGet, "/api/v1/analytics/events?timeframe=24h&kind=upload", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("events: status=%d", status)
	}
	var log models.EventLog
	decodeData(t, resp.Data, &log)
	if log.TotalCount != 2 {
		t.Fatalf("upload events = %d, want 2", log.TotalCount)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !resp.Success {
		t.Fatalf("health: status=%d resp=%+v", status, resp)
	}
	var health models.HealthStatus
	decodeData(t, resp.Data, &health)
	if health.Status != "ok" || !health.DatabaseConnected {
		t.Fatalf("health = %+v", health)
	}
}

func TestValidationFailures(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", models.RoleAdmin)

	// Unknown target kind.
	body := uploadBody("x.pdf", "x.pdf", "application/pdf", "channel", "c-1", 10)
	status, resp := env.do(t, http.MethodPost, "/api/v1/files", admin, body)
	if status != http.StatusBadRequest {
		t.Fatalf("bad target_kind: status=%d, want 400", status)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed {
		t.Fatalf("error = %+v", resp.Error)
	}

	// Missing required fields.
	status, _ = env.do(t, http.MethodPost, "/api/v1/files", admin,
		map[string]interface{}{"stored_name": "x"})
	if status != http.StatusBadRequest {
		t.Fatalf("missing fields: status=%d, want 400", status)
	}

	// Unknown body fields are rejected.
	status, _ = env.do(t, http.MethodPost, "/api/v1/files", admin,
		map[string]interface{}{"stored_name": "x", "surprise": true})
	if status != http.StatusBadRequest {
		t.Fatalf("unknown field: status=%d, want 400", status)
	}
}
