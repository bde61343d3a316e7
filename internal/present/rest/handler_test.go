package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/present/rest/middleware"
	"github.com/shelterhub/adoptd/internal/service"
	"github.com/shelterhub/adoptd/internal/usecase"
)

// --- mocks ---

type mockAccessRepo struct{}

func (m *mockAccessRepo) AccessInfo(ctx context.Context, requestID int64) (domain.AccessInfo, error) {
	if requestID != 1 {
		return domain.AccessInfo{}, domain.NotFoundError{Resource: "adoption request"}
	}
	return domain.AccessInfo{RequestID: 1, FoundationID: 7, AdopterUserID: "user-1"}, nil
}

type mockMembershipRepo struct{}

func (m *mockMembershipRepo) ForUser(ctx context.Context, userID string) (domain.Membership, error) {
	if userID == "staff-1" {
		return domain.Membership{UserID: "staff-1", FoundationID: 7, Role: domain.MemberRoleOwner}, nil
	}
	return domain.Membership{}, domain.NotFoundError{Resource: "membership"}
}

func (m *mockMembershipRepo) Members(ctx context.Context, foundationID int64) ([]domain.Membership, error) {
	return nil, nil
}

type mockRequestRepo struct {
	status      domain.Status
	transitions int
	responded   bool
}

func (m *mockRequestRepo) request() domain.AdoptionRequest {
	return domain.AdoptionRequest{
		ID: 1, AnimalID: 3, FoundationID: 7, AdopterUserID: "user-1", Status: m.status,
	}
}

func (m *mockRequestRepo) Get(ctx context.Context, id int64) (domain.AdoptionRequest, error) {
	if id != 1 {
		return domain.AdoptionRequest{}, domain.NotFoundError{Resource: "adoption request"}
	}
	return m.request(), nil
}

func (m *mockRequestRepo) GetDetail(ctx context.Context, id int64) (domain.RequestDetail, error) {
	if id != 1 {
		return domain.RequestDetail{}, domain.NotFoundError{Resource: "adoption request"}
	}
	email := "adopter@example.com"
	return domain.RequestDetail{
		Request: m.request(),
		Animal:  domain.AnimalSnapshot{Name: "Luna", Species: "dog"},
		Adopter: domain.AdopterProfile{Email: &email},
	}, nil
}

func (m *mockRequestRepo) Transition(ctx context.Context, id int64, from, to domain.Status, reason *string) error {
	if m.status != from {
		return domain.InvalidStatusError{Current: m.status}
	}
	m.status = to
	m.transitions++
	return nil
}

func (m *mockRequestRepo) MarkInfoRequested(ctx context.Context, id int64, from domain.Status, msg domain.Message, email domain.EmailQueueEntry) error {
	if m.status != from {
		return domain.InvalidStatusError{Current: m.status}
	}
	m.status = domain.StatusInfoRequested
	return nil
}

func (m *mockRequestRepo) CommitResponse(ctx context.Context, id int64, msg domain.Message, docs []domain.Document) error {
	if m.status != domain.StatusInfoRequested {
		return domain.InvalidStatusError{Current: m.status}
	}
	m.status = domain.StatusInReview
	m.responded = true
	return nil
}

type mockMessageRepo struct{}

func (m *mockMessageRepo) LatestFromSide(ctx context.Context, requestID int64, side domain.ActorSide) (domain.Message, error) {
	return domain.Message{
		ID: "msg-1", RequestID: requestID, SenderSide: side, Text: "please send photos",
	}, nil
}

type mockBlob struct {
	uploads int
}

func (m *mockBlob) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	m.uploads++
	return path, nil
}

func (m *mockBlob) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	return "https://blob.example/" + path + "?signed", nil
}

type mockDirectory struct{}

func (m *mockDirectory) Email(ctx context.Context, userID string) (string, error) {
	return "adopter@example.com", nil
}

type mockDispatcher struct{}

func (m *mockDispatcher) NotifyUser(ctx context.Context, n domain.Notification) {}
func (m *mockDispatcher) NotifyFoundation(ctx context.Context, fid int64, n domain.Notification) {
}
func (m *mockDispatcher) EnqueueEmail(ctx context.Context, e domain.EmailQueueEntry) {}

// --- harness ---

const testSecret = "test-secret"

func newServer(t *testing.T, status domain.Status) (*echo.Echo, *mockRequestRepo, *mockBlob) {
	t.Helper()

	requests := &mockRequestRepo{status: status}
	blob := &mockBlob{}

	access := usecase.NewAccessUsecase(&mockAccessRepo{}, &mockMembershipRepo{})
	infoUC := usecase.NewInfoRequestUsecase(access, requests, &mockMessageRepo{}, blob, &mockDirectory{}, &mockDispatcher{})
	requestUC := usecase.NewRequestUsecase(access, requests, blob, &mockDirectory{}, &mockDispatcher{})

	h := NewHandler(infoUC, requestUC, nil)

	e := echo.New()
	auth := middleware.NewAuthMiddleware(service.NewAuthService(testSecret, ""))
	e.Use(auth.IdentifyPrincipal)
	h.RegisterRoutes(e)

	return e, requests, blob
}

func signToken(t *testing.T, userID string, role domain.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionTestClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type sessionTestClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// --- tests ---

func TestHandleDetail(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "user-1", domain.RoleExternal)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/requests/1", nil), token)
	res := do(e, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var detail domain.RequestDetail
	if err := json.Unmarshal(res.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Animal.Name != "Luna" {
		t.Fatalf("expected animal snapshot, got %+v", detail)
	}
}

func TestHandleDetailUnauthenticated(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)

	res := do(e, httptest.NewRequest(http.MethodGet, "/api/v1/requests/1", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
}

func TestHandleDetailForbidden(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "user-2", domain.RoleExternal)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/requests/1", nil), token)
	res := do(e, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}
}

func TestHandleUpdateStatus(t *testing.T) {
	e, requests, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "staff-1", domain.RoleFoundationUser)

	body, _ := json.Marshal(map[string]string{"status": "preapproved"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/status", bytes.NewReader(body)), token)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := do(e, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if requests.status != domain.StatusPreapproved {
		t.Fatalf("expected preapproved, got %s", requests.status)
	}
}

func TestHandleUpdateStatusTerminal(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusRejected)
	token := signToken(t, "staff-1", domain.RoleFoundationUser)

	body, _ := json.Marshal(map[string]string{"status": "approved"})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/status", bytes.NewReader(body)), token)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := do(e, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", res.Code, res.Body.String())
	}
}

func TestHandleRequestInfo(t *testing.T) {
	e, requests, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "staff-1", domain.RoleFoundationUser)

	body, _ := json.Marshal(map[string]string{
		"subject": "Home check",
		"message": "Please send photos of your yard.",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/info-request", bytes.NewReader(body)), token)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := do(e, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if requests.status != domain.StatusInfoRequested {
		t.Fatalf("expected info_requested, got %s", requests.status)
	}
}

func TestHandleRequestInfoEmptyMessage(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "staff-1", domain.RoleFoundationUser)

	body, _ := json.Marshal(map[string]string{"subject": "x", "message": "   "})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/info-request", bytes.NewReader(body)), token)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := do(e, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", res.Code, res.Body.String())
	}
}

func TestHandleLatestPrompt(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInfoRequested)
	token := signToken(t, "user-1", domain.RoleExternal)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/requests/1/info-request", nil), token)
	res := do(e, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "please send photos") {
		t.Fatalf("expected prompt text in body: %s", res.Body.String())
	}
}

func multipartBody(t *testing.T, message string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("message", message); err != nil {
		t.Fatalf("write field: %v", err)
	}
	for name, contentType := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, name))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("binary-content")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestHandleRespond(t *testing.T) {
	e, requests, blob := newServer(t, domain.StatusInfoRequested)
	token := signToken(t, "user-1", domain.RoleExternal)

	buf, contentType := multipartBody(t, "Here are the photos.", map[string]string{
		"yard.jpg": "image/jpeg",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/response", buf), token)
	req.Header.Set(echo.HeaderContentType, contentType)
	res := do(e, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if !requests.responded {
		t.Fatalf("expected response to be committed")
	}
	if requests.status != domain.StatusInReview {
		t.Fatalf("expected in_review, got %s", requests.status)
	}
	if blob.uploads != 1 {
		t.Fatalf("expected one upload, got %d", blob.uploads)
	}
}

func TestHandleRespondInvalidFileType(t *testing.T) {
	e, requests, blob := newServer(t, domain.StatusInfoRequested)
	token := signToken(t, "user-1", domain.RoleExternal)

	buf, contentType := multipartBody(t, "Here is a video.", map[string]string{
		"tour.avi": "video/x-msvideo",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/response", buf), token)
	req.Header.Set(echo.HeaderContentType, contentType)
	res := do(e, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", res.Code, res.Body.String())
	}
	if blob.uploads != 0 {
		t.Fatalf("expected no uploads, got %d", blob.uploads)
	}
	if requests.status != domain.StatusInfoRequested {
		t.Fatalf("status should be unchanged, got %s", requests.status)
	}
}

func TestHandleRespondWrongStatus(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "user-1", domain.RoleExternal)

	buf, contentType := multipartBody(t, "late answer", nil)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/requests/1/response", buf), token)
	req.Header.Set(echo.HeaderContentType, contentType)
	res := do(e, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", res.Code, res.Body.String())
	}
}

func TestHandleDocumentURL(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "staff-1", domain.RoleFoundationUser)

	path := "adoption-requests/7/1/response-1700000000-yard.jpg"
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/requests/1/documents/url?path="+path, nil), token)
	res := do(e, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "?signed") {
		t.Fatalf("expected signed url in body: %s", res.Body.String())
	}
}

type stubStream struct {
	notes []domain.Notification
}

func (s *stubStream) Listen(ctx context.Context, userID string, out chan<- domain.Notification) error {
	for _, n := range s.notes {
		select {
		case out <- n:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func TestHandleRealtimeReaderExitsAfterStreamEnds(t *testing.T) {
	requests := &mockRequestRepo{status: domain.StatusInReview}
	access := usecase.NewAccessUsecase(&mockAccessRepo{}, &mockMembershipRepo{})
	infoUC := usecase.NewInfoRequestUsecase(access, requests, &mockMessageRepo{}, &mockBlob{}, &mockDirectory{}, &mockDispatcher{})
	requestUC := usecase.NewRequestUsecase(access, requests, &mockBlob{}, &mockDirectory{}, &mockDispatcher{})

	stream := &stubStream{notes: []domain.Notification{
		{UserID: "user-1", Type: domain.NotificationTypeStatusUpdate},
	}}
	h := NewHandler(infoUC, requestUC, stream)

	e := echo.New()
	auth := middleware.NewAuthMiddleware(service.NewAuthService(testSecret, ""))
	e.Use(auth.IdentifyPrincipal)
	h.RegisterRoutes(e)

	srv := httptest.NewServer(e)
	defer srv.Close()

	token := signToken(t, "user-1", domain.RoleExternal)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"
	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{
			"Authorization": []string{"Bearer " + token},
		})
		if err != nil {
			t.Fatalf("dial: %v", err)
		}

		var n domain.Notification
		if err := conn.ReadJSON(&n); err != nil {
			t.Fatalf("read notification: %v", err)
		}
		if n.Type != domain.NotificationTypeStatusUpdate {
			t.Fatalf("notification = %+v", n)
		}

		// The server closes once the stream ends; the next read must fail.
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Fatal("expected connection to be closed by the server")
		}
		conn.Close()
	}

	// Every disconnect must also end the server-side reader goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("goroutines leaked: baseline %d, now %d", baseline, runtime.NumGoroutine())
}

func TestHandleDocumentURLForeignPath(t *testing.T) {
	e, _, _ := newServer(t, domain.StatusInReview)
	token := signToken(t, "staff-1", domain.RoleFoundationUser)

	path := "adoption-requests/9/2/response-1700000000-yard.jpg"
	req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/requests/1/documents/url?path="+path, nil), token)
	res := do(e, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", res.Code, res.Body.String())
	}
}
