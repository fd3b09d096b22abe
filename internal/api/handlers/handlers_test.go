package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/outreach/internal/api/middleware"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/services"
	"github.com/yoockh/outreach/internal/utils"
)

func init() { gin.SetMode(gin.TestMode) }

// asUser stands in for JWTAuth.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(middleware.CtxUserID, id)
		}
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// ---- fakes ----

type fakeEntryService struct {
	estimate    *models.CollectionEstimate
	batchSizes  []int
	remaining   int
	entries     []models.Entry
	selected    []string
	deleteErr   error
	estimateErr error
}

func (f *fakeEntryService) EstimateCollectionSize(context.Context) (*models.CollectionEstimate, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeEntryService) DeleteBatch(_ context.Context, size int) (*models.BatchDeleteResult, error) {
	f.batchSizes = append(f.batchSizes, size)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	size = services.ClampBatchSize(size)
	n := size
	if n > f.remaining {
		n = f.remaining
	}
	f.remaining -= n
	return &models.BatchDeleteResult{DeletedCount: n, HasMoreEntries: f.remaining > 0, BatchSize: size}, nil
}

func (f *fakeEntryService) ListEntries(context.Context) ([]models.Entry, models.FilterStats, error) {
	return f.entries, services.CalculateStats(f.entries), nil
}

func (f *fakeEntryService) DeleteSelected(_ context.Context, ids []string) (*models.SelectiveDeleteResult, error) {
	if len(ids) == 0 || len(ids) > services.MaxSelectedIDs {
		return nil, utils.E(utils.CodeInvalidArgument, "fake", "entryIds must be a non-empty array", nil)
	}
	f.selected = ids
	res := &models.SelectiveDeleteResult{RequestedCount: len(ids)}
	for _, id := range ids {
		if id == "missing" {
			res.Errors = append(res.Errors, "failed to delete missing: entry not found")
			continue
		}
		res.DeletedCount++
	}
	return res, nil
}

func (f *fakeEntryService) ListLinkedInPosts(context.Context) ([]models.Entry, error) {
	return []models.Entry{{ID: "p1", PublishedDisplay: "Unknown"}}, nil
}

type fakeOutreachService struct {
	in      services.GenerateInput
	save    services.SaveInput
	genErr  error
	result  *services.GenerateResult
	history []models.OutreachRecord
	histLim int
}

func (f *fakeOutreachService) Generate(_ context.Context, in services.GenerateInput) (*services.GenerateResult, error) {
	f.in = in
	if f.genErr != nil {
		return nil, f.genErr
	}
	return f.result, nil
}

func (f *fakeOutreachService) Save(_ context.Context, in services.SaveInput) (string, error) {
	f.save = in
	return "rec-1", nil
}

func (f *fakeOutreachService) ListHistory(_ context.Context, _ string, limit int) ([]models.OutreachRecord, error) {
	f.histLim = limit
	return f.history, nil
}

type fakeProfileService struct {
	profiles map[string]*models.UserProfile
	attached [][]byte
}

func (f *fakeProfileService) GetMe(_ context.Context, userID string) (*models.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, utils.E(utils.CodeNotFound, "fake", "profile not found", utils.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileService) Upsert(_ context.Context, p *models.UserProfile) error {
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeProfileService) AttachResumePDF(_ context.Context, p *models.UserProfile, data []byte) error {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return utils.E(utils.CodeInvalidArgument, "fake", "invalid resume pdf", nil)
	}
	f.attached = append(f.attached, data)
	p.ResumePDFObject = "resumes/" + p.UserID + "/x.pdf"
	return nil
}

func (f *fakeProfileService) ResumePDF(context.Context, *models.UserProfile) ([]byte, error) {
	return nil, nil
}

type fakeSubscriptionService struct {
	plan   string
	months int
}

func (f *fakeSubscriptionService) GetStatus(context.Context, string) (*models.SubscriptionStatus, error) {
	return &models.SubscriptionStatus{IsPaid: false, Plan: models.PlanFree}, nil
}

func (f *fakeSubscriptionService) Activate(_ context.Context, _ string, plan string, months int) (*models.SubscriptionStatus, error) {
	f.plan, f.months = plan, months
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.SubscriptionStatus{IsPaid: true, Plan: models.PlanPro, Status: models.SubscriptionActive, ExpiresAt: &exp}, nil
}

func (f *fakeSubscriptionService) Cancel(context.Context, string) (*models.SubscriptionStatus, error) {
	return nil, utils.E(utils.CodeNotFound, "fake", "no subscription to cancel", nil)
}

type fakePreviewService struct{ img *string }

func (f *fakePreviewService) ResolvePreviewImage(context.Context, string) *string { return f.img }

// ---- tests ----

func TestWriteError(t *testing.T) {
	r := gin.New()
	r.GET("/bad", func(c *gin.Context) {
		writeError(c, utils.E(utils.CodeInvalidArgument, "op", "bad input", errors.New("hidden")))
	})
	r.GET("/boom", func(c *gin.Context) {
		writeError(c, utils.E(utils.CodeInternal, "op", "model failed", errors.New("quota exceeded")))
	})
	r.GET("/plain", func(c *gin.Context) { writeError(c, errors.New("raw")) })

	w, body := doJSON(t, r, http.MethodGet, "/bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])
	assert.Equal(t, "bad input", body["error"])
	assert.NotContains(t, body, "details")

	w, body = doJSON(t, r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "model failed", body["error"])
	assert.Equal(t, "quota exceeded", body["details"])

	w, body = doJSON(t, r, http.MethodGet, "/plain", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL", body["code"])
	assert.Equal(t, "raw", body["details"])
}

func adminRouter(svc *fakeEntryService) *gin.Engine {
	h := NewAdminHandler(svc)
	r := gin.New()
	r.GET("/api/admin/clear-entries", h.EstimateEntries)
	r.DELETE("/api/admin/clear-entries", h.DeleteBatch)
	r.GET("/api/admin/data-management", h.ListEntries)
	r.DELETE("/api/admin/data-management", h.DeleteSelected)
	r.GET("/api/admin/linkedin-posts", h.ListLinkedInPosts)
	return r
}

func TestAdminHandler_Estimate(t *testing.T) {
	svc := &fakeEntryService{estimate: &models.CollectionEstimate{
		EstimatedCount: models.SizeEstimate{Count: 1000, Saturated: true}, HasEntries: true, SampleSize: 1000,
	}}
	w, body := doJSON(t, adminRouter(svc), http.MethodGet, "/api/admin/clear-entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "1000+", body["estimatedCount"])
	assert.Equal(t, true, body["hasEntries"])
	assert.Equal(t, float64(1000), body["sampleSize"])

	svc.estimateErr = utils.E(utils.CodeInternal, "op", "failed to count entries", errors.New("mongo down"))
	w, body = doJSON(t, adminRouter(svc), http.MethodGet, "/api/admin/clear-entries", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "mongo down", body["details"])
}

func TestAdminHandler_DeleteBatch(t *testing.T) {
	svc := &fakeEntryService{remaining: 500}
	r := adminRouter(svc)

	w, body := doJSON(t, r, http.MethodDelete, "/api/admin/clear-entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["deletedCount"])
	assert.Equal(t, float64(100), body["batchSize"])
	assert.Equal(t, true, body["hasMoreEntries"])

	w, body = doJSON(t, r, http.MethodDelete, "/api/admin/clear-entries", map[string]any{"batchSize": 1000})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(200), body["batchSize"])
	assert.Equal(t, []int{100, 1000}, svc.batchSizes)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/clear-entries", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_DataManagement(t *testing.T) {
	svc := &fakeEntryService{entries: []models.Entry{
		{ID: "1", Name: "N/A", PublishedDisplay: "Mar 5, 2024"},
		{ID: "2", Name: "Ada", Email: "a@x.io", PublishedDisplay: "Unknown"},
	}}
	r := adminRouter(svc)

	w, body := doJSON(t, r, http.MethodGet, "/api/admin/data-management", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["entries"], 2)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(1), stats["invalidNames"])
	assert.Equal(t, float64(1), stats["withoutEmail"])

	w, body = doJSON(t, r, http.MethodDelete, "/api/admin/data-management", map[string]any{"entryIds": []string{"a", "b", "missing"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["deletedCount"])
	assert.Equal(t, float64(3), body["requestedCount"])
	require.Len(t, body["errors"], 1)
	assert.Contains(t, body["errors"].([]any)[0], "missing")

	w, body = doJSON(t, r, http.MethodDelete, "/api/admin/data-management", map[string]any{"entryIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = doJSON(t, r, http.MethodGet, "/api/admin/linkedin-posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["entries"], 1)
}

func outreachRouter(svc *fakeOutreachService, userID string) *gin.Engine {
	h := NewOutreachHandler(svc)
	r := gin.New()
	r.Use(asUser(userID))
	r.POST("/api/generate-outreach", h.Generate)
	r.POST("/api/save-outreach", h.Save)
	r.GET("/api/outreach-history", h.History)
	return r
}

func TestOutreachHandler_Generate(t *testing.T) {
	svc := &fakeOutreachService{result: &services.GenerateResult{Message: "Hi", OutreachRecordID: "rec-9", Saved: true}}
	r := outreachRouter(svc, "u1")

	w, body := doJSON(t, r, http.MethodPost, "/api/generate-outreach", map[string]any{
		"jobData":        map[string]any{"name": "Grace", "company": "Acme", "company_url": "acme.io", "linkedinurl": "https://linkedin.com/in/g"},
		"outreachType":   "job",
		"messageType":    "linkedin",
		"contactId":      "c1",
		"saveToDatabase": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hi", body["message"])
	assert.Equal(t, "rec-9", body["outreachRecordId"])

	assert.Equal(t, "u1", svc.in.OwnerUserID)
	assert.Equal(t, "acme.io", svc.in.JobData.CompanyURL)
	assert.Equal(t, "https://linkedin.com/in/g", svc.in.JobData.LinkedInURL)
	assert.True(t, svc.in.SaveToDatabase)
	assert.Equal(t, "c1", svc.in.ContactID)
}

func TestOutreachHandler_GenerateErrors(t *testing.T) {
	svc := &fakeOutreachService{genErr: utils.E(utils.CodeNotFound, "op", "user profile not found", nil)}
	w, body := doJSON(t, outreachRouter(svc, "u1"), http.MethodPost, "/api/generate-outreach", map[string]any{"outreachType": "job"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	svc.genErr = utils.E(utils.CodeInternal, "op", "failed to generate outreach message", errors.New("model unavailable"))
	w, body = doJSON(t, outreachRouter(svc, "u1"), http.MethodPost, "/api/generate-outreach", map[string]any{"outreachType": "job"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "model unavailable", body["details"])

	w, _ = doJSON(t, outreachRouter(svc, ""), http.MethodPost, "/api/generate-outreach", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOutreachHandler_SaveAndHistory(t *testing.T) {
	svc := &fakeOutreachService{history: []models.OutreachRecord{{ID: "r1", Stage: models.StageSent}}}
	r := outreachRouter(svc, "u1")

	w, body := doJSON(t, r, http.MethodPost, "/api/save-outreach", map[string]any{
		"jobData": map[string]any{"name": "Grace"}, "outreachType": "friendship", "messageType": "email", "generatedMessage": "Hello",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "rec-1", body["outreachRecordId"])
	assert.Equal(t, "Hello", svc.save.GeneratedMessage)

	w, body = doJSON(t, r, http.MethodGet, "/api/outreach-history?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["records"], 1)
	assert.Equal(t, 5, svc.histLim)

	w, _ = doJSON(t, r, http.MethodGet, "/api/outreach-history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func profileRouter(svc *fakeProfileService) *gin.Engine {
	h := NewProfileHandler(svc)
	r := gin.New()
	r.Use(asUser("u1"))
	r.GET("/api/user-profile", h.Me)
	r.POST("/api/user-profile", h.Update)
	r.POST("/api/user-profile/resume", h.UploadResume)
	return r
}

func TestProfileHandler(t *testing.T) {
	svc := &fakeProfileService{profiles: map[string]*models.UserProfile{}}
	r := profileRouter(svc)

	w, _ := doJSON(t, r, http.MethodGet, "/api/user-profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := doJSON(t, r, http.MethodPost, "/api/user-profile", map[string]any{
		"name":       " Ada ",
		"resumeText": "cv",
		"skills":     []string{"Go"},
		"experience": "ten years",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	stored := svc.profiles["u1"]
	require.NotNil(t, stored)
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "cv", stored.ResumeText)
	assert.JSONEq(t, `"ten years"`, string(stored.Experience))

	// partial update keeps untouched fields
	w, _ = doJSON(t, r, http.MethodPost, "/api/user-profile", map[string]any{"title": "Engineer"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", svc.profiles["u1"].Name)
	assert.Equal(t, "Engineer", svc.profiles["u1"].Title)

	w, body = doJSON(t, r, http.MethodGet, "/api/user-profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Engineer", body["title"])
}

func TestProfileHandler_ResumePDFBase64(t *testing.T) {
	svc := &fakeProfileService{profiles: map[string]*models.UserProfile{}}
	r := profileRouter(svc)

	w, _ := doJSON(t, r, http.MethodPost, "/api/user-profile", map[string]any{"resumePdfBase64": "data:application/pdf;base64,JVBERi0xLjQK"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.attached, 1)
	assert.Equal(t, "resumes/u1/x.pdf", svc.profiles["u1"].ResumePDFObject)

	w, _ = doJSON(t, r, http.MethodPost, "/api/user-profile", map[string]any{"resumePdfBase64": "!!!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/user-profile", map[string]any{"resumePdfBase64": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, svc.profiles["u1"].ResumePDFObject)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/user-profile/resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProfileHandler_UploadResume(t *testing.T) {
	svc := &fakeProfileService{profiles: map[string]*models.UserProfile{"u1": {UserID: "u1", Name: "Ada"}}}
	r := profileRouter(svc)

	pdf := []byte("%PDF-1.4\n% test\n")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "cv.pdf", pdf))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resumes/u1/x.pdf", svc.profiles["u1"].ResumePDFObject)
	assert.Equal(t, "Ada", svc.profiles["u1"].Name)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "cv.docx", pdf))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "cv.pdf", []byte("just some text")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/user-profile/resume", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandler(t *testing.T) {
	svc := &fakeSubscriptionService{}
	h := NewSubscriptionHandler(svc)
	r := gin.New()
	r.Use(asUser("u1"))
	r.GET("/api/subscription", h.Status)
	r.POST("/api/subscription", h.Activate)
	r.DELETE("/api/subscription", h.Cancel)

	w, body := doJSON(t, r, http.MethodGet, "/api/subscription", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["isPaid"])
	assert.Equal(t, "free", body["plan"])
	assert.Contains(t, body, "expiresAt")
	assert.Nil(t, body["expiresAt"])

	w, body = doJSON(t, r, http.MethodPost, "/api/subscription", map[string]any{"durationMonths": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["isPaid"])
	assert.Equal(t, "2030-01-01T00:00:00Z", body["expiresAt"])
	assert.Equal(t, 3, svc.months)

	w, _ = doJSON(t, r, http.MethodPost, "/api/subscription", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.months)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/subscription", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLinkPreviewHandler(t *testing.T) {
	img := "https://media.licdn.com/a.jpg"
	r := gin.New()
	r.GET("/api/link-preview", NewLinkPreviewHandler(&fakePreviewService{img: &img}).Resolve)
	w, body := doJSON(t, r, http.MethodGet, "/api/link-preview?url=https://linkedin.com/in/x", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, img, body["image"])

	r = gin.New()
	r.GET("/api/link-preview", NewLinkPreviewHandler(&fakePreviewService{}).Resolve)
	w, body = doJSON(t, r, http.MethodGet, "/api/link-preview?url=https://example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "image")
	assert.Nil(t, body["image"])
}
