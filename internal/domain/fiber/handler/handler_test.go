package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/middleware"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/usecase"
	"github.com/fadilmartias/cover-letter-generator/internal/workflow"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("handler-secret")

type stubFetcher struct {
	posting *model.JobPosting
	err     error
}

func (s stubFetcher) FetchJobPosting(_ context.Context, rawURL string) (*model.JobPosting, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.posting
	p.SourceURL = rawURL
	return &p, nil
}

type stubLetters struct {
	letter string
	err    error
}

func (s stubLetters) Generate(context.Context, string, string, string) (string, error) {
	return s.letter, s.err
}

func (s stubLetters) EditWithInstruction(_ context.Context, current, instruction string) (string, error) {
	return current + "\n" + instruction, nil
}

func (s stubLetters) ExtractJobTitle(context.Context, string) string {
	return "Backend Engineer"
}

// savingStore only implements Upsert, any other call panics.
type savingStore struct {
	usecase.ApplicationStore
	saved []model.Application
}

func (s *savingStore) Upsert(_ context.Context, app *model.Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	s.saved = append(s.saved, *app)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

type testServer struct {
	app   *fiber.App
	store *savingStore
}

func newTestServer(t *testing.T, fetcher service.JobFetcher, letters workflow.LetterWriter) *testServer {
	t.Helper()
	cfg := config.DefaultGenerationConfig()
	cfg.AutoGenerate = false

	wfStore := workflow.NewStore(workflow.Deps{
		Fetcher:   fetcher,
		Extractor: service.NewResumeExtractService(logging.Discard()),
		Letters:   letters,
		Config:    cfg,
		Log:       logging.Discard(),
	}, time.Hour, 0)
	appStore := &savingStore{}
	apps := usecase.NewApplicationUsecase(appStore, nil, logging.Discard())

	app := fiber.New(fiber.Config{BodyLimit: BodyLimit})
	app.Use(middleware.Session(testSecret))
	NewWorkflowHandler(wfStore, apps).RegisterRoutes(app)
	NewApplicationHandler(apps).RegisterRoutes(app)
	return &testServer{app: app, store: appStore}
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func resumeRequest(t *testing.T, target, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="resume"; filename="`+fileName+`"`)
	h.Set(fiber.HeaderContentType, contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func workflowData(t *testing.T, env envelope) dto.WorkflowDTO {
	t.Helper()
	var wf dto.WorkflowDTO
	require.NoError(t, json.Unmarshal(env.Data, &wf))
	return wf
}

func bearer(t *testing.T, req *http.Request, userID uuid.UUID) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestWorkflowHandler_FullFlow(t *testing.T) {
	srv := newTestServer(t,
		stubFetcher{posting: &model.JobPosting{CleanedText: "Senior Go engineer, 5+ years, remote"}},
		stubLetters{letter: "Dear Hiring Manager,"},
	)

	code, env := srv.do(t, jsonRequest(http.MethodPost, "/workflows", nil))
	require.Equal(t, fiber.StatusCreated, code)
	wf := workflowData(t, env)
	assert.Equal(t, "url", wf.Stage)
	base := "/workflows/" + wf.ID.String()

	code, env = srv.do(t, jsonRequest(http.MethodPost, base+"/job", dto.LoadJobRequest{URL: "https://jobs.example.com/1"}))
	require.Equal(t, fiber.StatusOK, code)
	wf = workflowData(t, env)
	assert.Equal(t, "resume", wf.Stage)
	assert.Equal(t, "https://jobs.example.com/1", wf.JobURL)
	require.NotNil(t, wf.KeyDetails)
	assert.True(t, wf.KeyDetails.Remote)
	require.NotNil(t, wf.Status)
	assert.Equal(t, "upload_resume", wf.Status.Code)

	code, env = srv.do(t, resumeRequest(t, base+"/resume", "cv.txt", "text/plain", []byte("Go developer, 6 years")))
	require.Equal(t, fiber.StatusOK, code)
	wf = workflowData(t, env)
	assert.Equal(t, "create", wf.Stage)
	assert.Equal(t, "Go developer, 6 years", wf.ResumeText)
	assert.True(t, wf.CanGenerate)

	code, env = srv.do(t, jsonRequest(http.MethodPost, base+"/generate", nil))
	require.Equal(t, fiber.StatusOK, code)
	wf = workflowData(t, env)
	assert.Equal(t, "view", wf.Stage)
	assert.Equal(t, "Dear Hiring Manager,", wf.CoverLetter)
	assert.Equal(t, "Backend Engineer", wf.JobTitle)

	codes := make([]string, 0, len(wf.History))
	for _, s := range wf.History {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{
		"opening_website", "analyzing_job", "job_loaded", "upload_resume",
		"resume_uploaded", "creating_letter", "letter_created",
	}, codes)

	code, env = srv.do(t, jsonRequest(http.MethodPut, base+"/letter", dto.EditLetterRequest{CoverLetter: "Dear team,"}))
	require.Equal(t, fiber.StatusOK, code)
	wf = workflowData(t, env)
	assert.Equal(t, "Dear team,", wf.CoverLetter)
	assert.True(t, wf.EditedByUser)
}

func TestWorkflowHandler_FetchFailureShowsError(t *testing.T) {
	srv := newTestServer(t, stubFetcher{err: common.ErrFetchFailed}, stubLetters{})

	_, env := srv.do(t, jsonRequest(http.MethodPost, "/workflows", nil))
	id := workflowData(t, env).ID

	code, env := srv.do(t, jsonRequest(http.MethodPost, "/workflows/"+id.String()+"/job", dto.LoadJobRequest{URL: "https://x.example"}))
	assert.Equal(t, fiber.StatusBadGateway, code)
	assert.False(t, env.Success)

	code, env = srv.do(t, jsonRequest(http.MethodGet, "/workflows/"+id.String(), nil))
	require.Equal(t, fiber.StatusOK, code)
	wf := workflowData(t, env)
	assert.Equal(t, "error", wf.Stage)
	assert.Equal(t, common.ErrFetchFailed.Error(), wf.Error)
	assert.Equal(t, "https://x.example", wf.JobURL)
}

func TestWorkflowHandler_ResumeValidation(t *testing.T) {
	srv := newTestServer(t, stubFetcher{posting: &model.JobPosting{CleanedText: "job"}}, stubLetters{})
	_, env := srv.do(t, jsonRequest(http.MethodPost, "/workflows", nil))
	base := "/workflows/" + workflowData(t, env).ID.String()
	srv.do(t, jsonRequest(http.MethodPost, base+"/job", dto.LoadJobRequest{URL: "https://x.example"}))

	code, _ := srv.do(t, resumeRequest(t, base+"/resume", "cv.docx", "application/msword", []byte("doc")))
	assert.Equal(t, fiber.StatusUnsupportedMediaType, code)

	big := bytes.Repeat([]byte("a"), int(service.MaxResumeSize)+1)
	code, _ = srv.do(t, resumeRequest(t, base+"/resume", "cv.txt", "text/plain", big))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, code)

	code, env = srv.do(t, jsonRequest(http.MethodPost, base+"/resume", nil))
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "required", env.Details[resumeField])
}

func TestWorkflowHandler_StageOrderAndUnknown(t *testing.T) {
	srv := newTestServer(t, stubFetcher{posting: &model.JobPosting{CleanedText: "job"}}, stubLetters{})
	_, env := srv.do(t, jsonRequest(http.MethodPost, "/workflows", nil))
	base := "/workflows/" + workflowData(t, env).ID.String()

	code, _ := srv.do(t, jsonRequest(http.MethodPost, base+"/generate", nil))
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = srv.do(t, jsonRequest(http.MethodGet, "/workflows/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = srv.do(t, jsonRequest(http.MethodGet, "/workflows/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestWorkflowHandler_SaveNeedsSession(t *testing.T) {
	srv := newTestServer(t,
		stubFetcher{posting: &model.JobPosting{CleanedText: "job"}},
		stubLetters{letter: "Dear Hiring Manager,"},
	)
	_, env := srv.do(t, jsonRequest(http.MethodPost, "/workflows", nil))
	base := "/workflows/" + workflowData(t, env).ID.String()
	srv.do(t, jsonRequest(http.MethodPost, base+"/job", dto.LoadJobRequest{URL: "https://x.example"}))
	srv.do(t, resumeRequest(t, base+"/resume", "cv.txt", "text/plain", []byte("resume")))
	srv.do(t, jsonRequest(http.MethodPost, base+"/generate", nil))

	code, env := srv.do(t, jsonRequest(http.MethodPost, base+"/save", nil))
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "/auth", env.Details["redirect"])
	assert.Empty(t, srv.store.saved)

	userID := uuid.New()
	code, env = srv.do(t, bearer(t, jsonRequest(http.MethodPost, base+"/save", nil), userID))
	require.Equal(t, fiber.StatusOK, code)
	wf := workflowData(t, env)
	require.NotNil(t, wf.ApplicationID)
	require.Len(t, srv.store.saved, 1)
	first := srv.store.saved[0]
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, "Backend Engineer", first.JobTitle)
	assert.Equal(t, model.StatusWishlist, first.Status)

	// a second save updates the same record and leaves its status alone
	_, _ = srv.do(t, bearer(t, jsonRequest(http.MethodPost, base+"/save", nil), userID))
	require.Len(t, srv.store.saved, 2)
	assert.Equal(t, first.ID, srv.store.saved[1].ID)
	assert.Empty(t, srv.store.saved[1].Status)
}

func TestApplicationHandler_RequiresSession(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Session(testSecret))
	NewApplicationHandler(nil).RegisterRoutes(app)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/applications", nil),
		httptest.NewRequest(http.MethodGet, "/applications/stats", nil),
		httptest.NewRequest(http.MethodDelete, "/applications/"+uuid.NewString(), nil),
		jsonRequest(http.MethodPatch, "/applications/"+uuid.NewString()+"/status", dto.UpdateStatusRequest{Status: "Applied"}),
	} {
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, req.URL.Path)
		assert.True(t, strings.Contains(string(body), `"redirect":"/auth"`), string(body))
	}
}

func TestErrorMessage(t *testing.T) {
	wrapped := fmt.Errorf("%w: upstream returned 503", common.ErrGenerationFailed)
	assert.Equal(t, common.ErrGenerationFailed.Error(), errorMessage(wrapped))

	joined := fmt.Errorf("%w: %w", common.ErrGenerationFailed, errors.New("quota exceeded"))
	assert.Equal(t, common.ErrGenerationFailed.Error(), errorMessage(joined))
	assert.Equal(t, common.ErrFetchFailed.Error(), errorMessage(fmt.Errorf("load job: %w", fmt.Errorf("%w: 404", common.ErrFetchFailed))))
	assert.Equal(t, "plain", errorMessage(errors.New("plain")))
}
