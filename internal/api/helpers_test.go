package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/mocks"
	"github.com/phrazzld/blog-api/internal/platform/session"
	"github.com/phrazzld/blog-api/internal/platform/storage"
	"github.com/phrazzld/blog-api/internal/serializer"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testPassword = "Lighthouse-Harbor-42"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// harness serves the full router over in-memory stores. Session tokens are
// "token-{user id}".
type harness struct {
	stores   *mocks.Stores
	blobs    *storage.MemoryStore
	emitter  *mocks.RecordingEmitter
	sessions *session.MemoryRegistry
	users    *service.UserServiceImpl
	auth     service.AuthService
	db       *fakePinger
	router   http.Handler
}

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(context.Context) error {
	return p.err
}

func testTokens() *mocks.MockJWTService {
	return &mocks.MockJWTService{
		TTL: time.Hour,
		GenerateTokenFn: func(_ context.Context, userID int64) (string, *auth.Claims, error) {
			token := fmt.Sprintf("token-%d", userID)
			now := time.Now()
			return token, &auth.Claims{
				UserID:    userID,
				SessionID: token,
				IssuedAt:  now,
				ExpiresAt: now.Add(time.Hour),
			}, nil
		},
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			var id int64
			if _, err := fmt.Sscanf(token, "token-%d", &id); err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: id, SessionID: token}, nil
		},
	}
}

func newHarness(t *testing.T, configure ...func(*RouterOptions)) *harness {
	t.Helper()
	logger := testLogger()

	h := &harness{
		stores:   mocks.NewStores(),
		blobs:    storage.NewMemoryStore("http://blobs.test"),
		emitter:  &mocks.RecordingEmitter{},
		sessions: session.NewMemoryRegistry(),
		db:       &fakePinger{},
	}
	hasher := &mocks.MockPasswordHasher{}
	decoder := &mocks.MockDecoder{Width: 640, Height: 480}

	categories, err := service.NewCategoryService(h.stores.Categories, h.stores.MediaFiles, h.emitter, logger)
	require.NoError(t, err)
	tags, err := service.NewTagService(h.stores.Tags, logger)
	require.NoError(t, err)
	posts, err := service.NewPostService(h.stores.Posts, h.stores.Categories, h.stores.Tags, h.emitter, logger)
	require.NoError(t, err)
	media, err := service.NewMediaService(h.stores.Posts, h.stores.MediaFiles, h.blobs, decoder, h.emitter, logger)
	require.NoError(t, err)
	h.users, err = service.NewUserService(h.stores.Users, h.stores.MediaFiles, hasher, h.sessions, h.emitter, logger)
	require.NoError(t, err)
	profiles, err := service.NewProfileService(h.stores.Profiles, h.stores.SocialAccounts, h.blobs, h.emitter, logger)
	require.NoError(t, err)
	h.auth, err = service.NewAuthService(h.stores.Users, hasher, testTokens(), h.sessions, logger)
	require.NoError(t, err)

	s := serializer.New(h.blobs)
	opts := RouterOptions{
		Authenticator:      h.auth,
		LoginRatePerMinute: 0,
		Logger:             logger,
	}
	for _, fn := range configure {
		fn(&opts)
	}

	h.router = NewRouter(Handlers{
		Auth:       NewAuthHandler(h.auth, &config.AuthConfig{}, logger),
		Categories: NewCategoryHandler(categories, s, logger),
		Tags:       NewTagHandler(tags, s, logger),
		Posts:      NewPostHandler(posts, s, logger),
		Media:      NewMediaHandler(media, s, 1, logger),
		Users:      NewUserHandler(h.users, s, logger),
		Profiles:   NewProfileHandler(profiles, s, 1, logger),
		Health:     NewHealthHandler(h.db, "test", "testing", logger),
	}, opts)
	return h
}

func ptr[T any](v T) *T {
	return &v
}

func (h *harness) createUser(t *testing.T, username string, admin bool) *domain.User {
	t.Helper()
	in := service.UserInput{
		Username: ptr(username),
		Email:    ptr(username + "@example.com"),
		Password: ptr(testPassword),
	}
	create := h.users.Create
	if admin {
		create = h.users.CreateAdmin
	}
	u, err := create(context.Background(), in)
	require.NoError(t, err)
	return u
}

// login opens a session for username and returns its token.
func (h *harness) login(t *testing.T, username string) string {
	t.Helper()
	sess, err := h.auth.Login(context.Background(), username, testPassword)
	require.NoError(t, err)
	return sess.Token
}

// adminToken creates an admin and logs it in.
func (h *harness) adminToken(t *testing.T) string {
	t.Helper()
	h.createUser(t, "admin", true)
	return h.login(t, "admin")
}

// authorToken creates an author and logs it in.
func (h *harness) authorToken(t *testing.T, username string) (*domain.User, string) {
	t.Helper()
	u := h.createUser(t, username, false)
	return u, h.login(t, username)
}

// request builds a request whose body is body itself when it is a string and
// its JSON encoding otherwise.
func request(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	return req
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return h.serve(request(t, method, path, token, body))
}

type part struct {
	field, filename string
	data            []byte
}

// multipartRequest builds a multipart body from form values and file parts.
func multipartRequest(t *testing.T, method, path, token string, values map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	return req
}

type envelope struct {
	Data     json.RawMessage  `json:"data"`
	Included []map[string]any `json:"included"`
	Errors   []struct {
		Status string         `json:"status"`
		Title  string         `json:"title"`
		Detail string         `json:"detail"`
		Meta   map[string]any `json:"meta"`
	} `json:"errors"`
	Meta map[string]any `json:"meta"`
}

type resource struct {
	Type          string                     `json:"type"`
	ID            string                     `json:"id"`
	Attributes    map[string]any             `json:"attributes"`
	Relationships map[string]json.RawMessage `json:"relationships"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (e envelope) resource(t *testing.T) resource {
	t.Helper()
	var r resource
	require.NoError(t, json.Unmarshal(e.Data, &r))
	return r
}

func (e envelope) resources(t *testing.T) []resource {
	t.Helper()
	var rs []resource
	require.NoError(t, json.Unmarshal(e.Data, &rs))
	return rs
}

func (e envelope) details() []string {
	out := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err.Detail)
	}
	return out
}

// requireError asserts a single-error response.
func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.Len(t, env.Errors, 1, rec.Body.String())
	require.Equal(t, fmt.Sprint(status), env.Errors[0].Status)
	require.Equal(t, detail, env.Errors[0].Detail)
}
