package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/phrazzld/taktplan/internal/config"
	"github.com/phrazzld/taktplan/internal/mocks"
	"github.com/phrazzld/taktplan/internal/platform/filestore"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const seedPassword = "seedpassword"

// testServer is the full router over in-memory metadata stores and a
// file store in a temporary directory.
type testServer struct {
	app       *application
	router    http.Handler
	uploadDir string
	logs      *logger.TestLogBuffer
}

func testConfig(uploadDir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "debug", ShutdownTimeoutSeconds: 2},
		Auth:   auth.DefaultJWTConfig(),
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Storage: config.StorageConfig{
			UploadDir: uploadDir,
		},
		Seed: config.SeedConfig{
			Enabled:       true,
			ManagerEmail:  "manager@example.com",
			EmployeeEmail: "employee@example.com",
			Password:      seedPassword,
		},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := testConfig(dir)
	log, logs := logger.NewTestLogger()

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore(users)
	blobs, err := filestore.New(dir, log)
	require.NoError(t, err)

	app, err := newApplication(cfg, log, dependencies{
		users:       users,
		tasks:       tasks,
		attachments: mocks.NewMockAttachmentStore(tasks),
		blobs:       blobs,
		transactor:  &mocks.NoopTransactor{},
	})
	require.NoError(t, err)
	require.NoError(t, seedUsers(context.Background(), app.userService, cfg.Seed, log))

	return &testServer{
		app:       app,
		router:    app.setupRouter(),
		uploadDir: dir,
		logs:      logs,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// token logs in and returns the access token.
func (s *testServer) token(t *testing.T, email, password string) string {
	t.Helper()
	rr := s.login(t, email, password)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func (s *testServer) json(t *testing.T, token, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *testServer) upload(t *testing.T, token, target, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return s.do(req)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
