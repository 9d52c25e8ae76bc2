package enhancements_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"enhancehub-backend/internal/bootstrap"
	"enhancehub-backend/internal/shared/config"
)

func newTestApp(t *testing.T, limit int) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:                  "0",
		CORSAllowOrigin:       []string{"http://localhost:5173"},
		WorkspaceRoot:         t.TempDir(),
		LocalStoreDir:         t.TempDir(),
		ObjectStoreType:       "local",
		Env:                   "dev",
		EnhancementLimit:      limit,
		EnhancementWindowDays: 7,
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	// Tests flip files and re-read immediately; the per-enhancement probe
	// window would mask the flip.
	app.EnhancementsService.SetProbeThrottle(0)
	return app
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		body + `</w:t></w:r></w:p></w:body></w:document>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func doJSON(t *testing.T, app *bootstrap.App, method, path, guestID string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func uploadStyledResume(t *testing.T, app *bootstrap.App, guestID string) string {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "resume.docx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	docx := buildDocx(t, "Jane Doe. Backend engineer. Skills: Go, Kubernetes, PostgreSQL, Terraform.")
	if _, err := fileWriter.Write(docx); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload resume: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ResumeID string `json:"resumeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode resume response: %v", err)
	}
	if created.ResumeID == "" {
		t.Fatalf("expected resumeId in response")
	}

	styleResp := doJSON(t, app, http.MethodPatch, "/api/v1/resumes/"+created.ResumeID+"/style", guestID,
		map[string]string{"style": "modern"})
	if styleResp.Code != http.StatusOK {
		t.Fatalf("set style: expected 200, got %d: %s", styleResp.Code, styleResp.Body.String())
	}
	return created.ResumeID
}

func createTestJob(t *testing.T, app *bootstrap.App, guestID string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/jobs", guestID, map[string]string{
		"title":       "Platform Engineer",
		"company":     "Acme",
		"description": "Looking for Go, Kubernetes and PostgreSQL experience.",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create job: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode job response: %v", err)
	}
	return created.JobID
}

type enhancementBody struct {
	EnhancementID    string            `json:"enhancementId"`
	Status           string            `json:"status"`
	ResumeReady      bool              `json:"resumeReady"`
	CoverLetterReady bool              `json:"coverLetterReady"`
	Files            map[string]string `json:"files"`
}

func TestEnhancementLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t, 10)
	const guest = "lifecycle-guest"

	resumeID := uploadStyledResume(t, app, guest)
	jobID := createTestJob(t, app, guest)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/enhancements", guest, map[string]any{
		"resumeId": resumeID,
		"jobId":    jobID,
		"kind":     "job_tailoring",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create enhancement: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created enhancementBody
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode enhancement: %v", err)
	}
	if created.EnhancementID == "" || created.Status != "pending" {
		t.Fatalf("unexpected create response: %+v", created)
	}

	taskDir := filepath.Join(app.Config.WorkspaceRoot, "resumes", "enhanced", created.EnhancementID)
	if _, err := os.Stat(filepath.Join(taskDir, "INSTRUCTIONS.md")); err != nil {
		t.Fatalf("expected INSTRUCTIONS.md in task dir: %v", err)
	}

	// The generator has not produced output yet.
	early := doJSON(t, app, http.MethodGet, "/api/v1/enhancements/"+created.EnhancementID+"/download", guest, nil)
	if early.Code != http.StatusConflict {
		t.Fatalf("premature download: expected 409, got %d", early.Code)
	}
	if code := errorCode(t, early); code != "not_ready" {
		t.Fatalf("premature download: expected code not_ready, got %q", code)
	}

	enhanced := "# Jane Doe\n\nTailored resume body.\n"
	if err := os.WriteFile(filepath.Join(taskDir, "enhanced.md"), []byte(enhanced), 0o644); err != nil {
		t.Fatalf("write enhanced.md: %v", err)
	}

	statusResp := doJSON(t, app, http.MethodGet, "/api/v1/enhancements/"+created.EnhancementID, guest, nil)
	if statusResp.Code != http.StatusOK {
		t.Fatalf("get enhancement: expected 200, got %d", statusResp.Code)
	}
	var got enhancementBody
	if err := json.NewDecoder(statusResp.Body).Decode(&got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got.Status != "completed" || !got.ResumeReady {
		t.Fatalf("expected completed after output appeared, got %+v", got)
	}

	download := doJSON(t, app, http.MethodGet, "/api/v1/enhancements/"+created.EnhancementID+"/download", guest, nil)
	if download.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", download.Code)
	}
	if ct := download.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := download.Header().Get("Content-Disposition"); !strings.Contains(cd, "enhanced.md") {
		t.Fatalf("unexpected content disposition: %s", cd)
	}
	if download.Body.String() != enhanced {
		t.Fatalf("downloaded body mismatch")
	}

	del := doJSON(t, app, http.MethodDelete, "/api/v1/enhancements/"+created.EnhancementID, guest, nil)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", del.Code)
	}
	if _, err := os.Stat(taskDir); !os.IsNotExist(err) {
		t.Fatalf("expected task dir removed, stat err=%v", err)
	}
	gone := doJSON(t, app, http.MethodGet, "/api/v1/enhancements/"+created.EnhancementID, guest, nil)
	if gone.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", gone.Code)
	}
}

func TestEnhancementOwnershipOverHTTP(t *testing.T) {
	app := newTestApp(t, 10)
	const owner = "owner-guest"
	const stranger = "stranger-guest"

	resumeID := uploadStyledResume(t, app, owner)
	jobID := createTestJob(t, app, owner)
	resp := doJSON(t, app, http.MethodPost, "/api/v1/enhancements", owner, map[string]any{
		"resumeId": resumeID,
		"jobId":    jobID,
		"kind":     "job_tailoring",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create enhancement: expected 201, got %d", resp.Code)
	}
	var created enhancementBody
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode enhancement: %v", err)
	}

	// Reads by another user hide existence.
	foreign := doJSON(t, app, http.MethodGet, "/api/v1/enhancements/"+created.EnhancementID, stranger, nil)
	if foreign.Code != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", foreign.Code)
	}
	if code := errorCode(t, foreign); code != "not_found" {
		t.Fatalf("foreign get: expected code not_found, got %q", code)
	}

	// Writes by another user are refused outright.
	foreignDel := doJSON(t, app, http.MethodDelete, "/api/v1/enhancements/"+created.EnhancementID, stranger, nil)
	if foreignDel.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403, got %d", foreignDel.Code)
	}

	ownerGet := doJSON(t, app, http.MethodGet, "/api/v1/enhancements/"+created.EnhancementID, owner, nil)
	if ownerGet.Code != http.StatusOK {
		t.Fatalf("owner get after foreign delete attempt: expected 200, got %d", ownerGet.Code)
	}
}

func TestEnhancementValidationOverHTTP(t *testing.T) {
	app := newTestApp(t, 10)
	const guest = "validation-guest"

	resumeID := uploadStyledResume(t, app, guest)

	cases := []struct {
		name     string
		payload  map[string]any
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing resume id",
			payload:  map[string]any{"kind": "job_tailoring", "jobId": "job-1"},
			wantCode: http.StatusBadRequest,
			wantErr:  "validation_error",
		},
		{
			name:     "unknown kind",
			payload:  map[string]any{"resumeId": resumeID, "kind": "polish"},
			wantCode: http.StatusBadRequest,
			wantErr:  "validation_error",
		},
		{
			name:     "tailoring without job",
			payload:  map[string]any{"resumeId": resumeID, "kind": "job_tailoring"},
			wantCode: http.StatusBadRequest,
			wantErr:  "validation_error",
		},
		{
			name:     "revamp with unknown industry",
			payload:  map[string]any{"resumeId": resumeID, "kind": "industry_revamp", "industry": "alchemy"},
			wantCode: http.StatusBadRequest,
			wantErr:  "validation_error",
		},
		{
			name:     "unknown resume",
			payload:  map[string]any{"resumeId": "resume-missing", "kind": "industry_revamp", "industry": "software_engineering"},
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
	}

	for _, tc := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/enhancements", guest, tc.payload)
		if resp.Code != tc.wantCode {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.wantCode, resp.Code, resp.Body.String())
		}
		if code := errorCode(t, resp); code != tc.wantErr {
			t.Fatalf("%s: expected code %q, got %q", tc.name, tc.wantErr, code)
		}
	}
}

func TestEnhancementQuotaOverHTTP(t *testing.T) {
	app := newTestApp(t, 1)
	const guest = "quota-guest"

	resumeID := uploadStyledResume(t, app, guest)

	first := doJSON(t, app, http.MethodPost, "/api/v1/enhancements", guest, map[string]any{
		"resumeId": resumeID,
		"kind":     "industry_revamp",
		"industry": "software_engineering",
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := doJSON(t, app, http.MethodPost, "/api/v1/enhancements", guest, map[string]any{
		"resumeId": resumeID,
		"kind":     "industry_revamp",
		"industry": "software_engineering",
	})
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second create: expected 429, got %d", second.Code)
	}
	if code := errorCode(t, second); code != "limit_reached" {
		t.Fatalf("second create: expected code limit_reached, got %q", code)
	}

	usageResp := doJSON(t, app, http.MethodGet, "/api/v1/usage", guest, nil)
	if usageResp.Code != http.StatusOK {
		t.Fatalf("usage: expected 200, got %d", usageResp.Code)
	}
	var usageBody struct {
		Limit int `json:"limit"`
		Used  int `json:"used"`
	}
	if err := json.NewDecoder(usageResp.Body).Decode(&usageBody); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if usageBody.Limit != 1 || usageBody.Used != 1 {
		t.Fatalf("expected limit=1 used=1, got %+v", usageBody)
	}
}

func TestHealthAndMetricsBypassAuth(t *testing.T) {
	app := newTestApp(t, 10)

	health := httptest.NewRecorder()
	app.Router.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	if health.Code != http.StatusOK {
		t.Fatalf("health: expected 200 without identity headers, got %d", health.Code)
	}
	var status struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(health.Body).Decode(&status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !status.OK || status.Checks["workspace"] != "ok" {
		t.Fatalf("unexpected health payload: %+v", status)
	}
	if status.Checks["database"] != "memory" {
		t.Fatalf("expected memory database check, got %+v", status.Checks)
	}

	metricsResp := httptest.NewRecorder()
	app.Router.ServeHTTP(metricsResp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if metricsResp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", metricsResp.Code)
	}
	if !strings.Contains(metricsResp.Body.String(), "enhancement_requested_total") {
		t.Fatalf("expected enhancement counters in metrics exposition")
	}
}
