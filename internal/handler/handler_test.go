package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository/store"
	"github.com/petlink/petlink/internal/service"
	"github.com/petlink/petlink/internal/storage"
)

// The handler tests exercise the full request path — chi routing, auth
// middleware, JSON/multipart decoding, the real services, and the real
// repository on in-memory SQLite. Only object storage is faked.

type memStorage struct {
	objects   map[string][]byte
	uploadErr error
}

var _ service.ObjectStorage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(_ context.Context, key string, content []byte, _ string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.objects[key] = content
	return "https://cdn.test/" + key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStorage) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "https://cdn.test/")
}

type stubGoogle struct {
	user *auth.GoogleUser
	err  error
}

func (s *stubGoogle) Verify(context.Context, string) (*auth.GoogleUser, error) {
	return s.user, s.err
}

type testEnv struct {
	router  *chi.Mux
	db      *store.Store
	storage *memStorage
	tokens  *auth.TokenService
	google  *stubGoogle
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-16+")
	require.NoError(t, err)
	objects := newMemStorage()
	google := &stubGoogle{}

	authService := service.NewAuthService(db.Users(), tokens, auth.NewPasswordServiceForTest(4), google, logger)
	petService := service.NewPetService(db.LostPets(), objects, logger)
	reportService := service.NewReportService(db.Sightings(), objects, logger)
	communityService := service.NewCommunityService(db.Community(), logger)

	authH := NewAuthHandler(authService)
	petH := NewPetHandler(petService)
	reportH := NewReportHandler(reportService)
	communityH := NewCommunityHandler(communityService)
	adminH := NewAdminHandler(petService, reportService, communityService)

	requireAuth := auth.RequireAuth(tokens)
	requireAdmin := auth.RequireRole(model.RoleAdmin)

	r := chi.NewRouter()
	r.Post("/register", authH.Register)
	r.Post("/login", authH.Login)
	r.Post("/auth/google", authH.GoogleLogin)
	r.With(requireAuth).Get("/api/users/me", authH.Me)

	r.Get("/lost-pets", petH.List)
	r.Get("/lost-pets/{id}", petH.Get)
	r.Get("/missing-posts", petH.Board)
	r.With(requireAuth).Post("/lost-pets", petH.Create)
	r.Route("/mypets", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", petH.ListMine)
		r.Put("/{id}", petH.Update)
		r.Delete("/{id}", petH.Delete)
	})

	r.Get("/reports", reportH.List)
	r.Get("/reports/{id}", reportH.Get)
	r.Get("/witness-posts", reportH.Board)
	r.With(requireAuth).Post("/reports", reportH.Create)

	r.Route("/community", func(r chi.Router) {
		r.Get("/", communityH.ListPosts)
		r.Get("/{id}", communityH.GetPost)
		r.With(requireAuth).Post("/", communityH.CreatePost)
		r.With(requireAuth).Delete("/{id}", communityH.DeletePost)
		r.With(requireAuth).Post("/{id}/comments", communityH.CreateComment)
		r.With(requireAuth).Delete("/{id}/comments/{commentID}", communityH.DeleteComment)
	})

	r.Route("/api/admin/delete", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Delete("/missing/{id}", adminH.DeleteLostPet)
		r.Delete("/reports/{id}", adminH.DeleteReport)
		r.Delete("/community/{id}", adminH.DeleteCommunityPost)
	})

	return &testEnv{router: r, db: db, storage: objects, tokens: tokens, google: google}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, method, path, token, bytes.NewReader(body), "application/json")
}

// registerAndLogin creates an account through the API and returns its token.
func (e *testEnv) registerAndLogin(t *testing.T, id string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/register", "", map[string]string{
		"id": id, "password": "correct horse", "nickname": "nick-" + id, "name": "Name", "phone": "010-0000-0000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.doJSON(t, http.MethodPost, "/login", "", map[string]string{"id": id, "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// adminToken mints a token with the ADMIN role directly; role promotion has
// no API surface.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	user := &model.User{ID: "admin@example.com", Nickname: "admin", Role: model.RoleAdmin}
	require.NoError(t, e.db.Users().Create(context.Background(), user))
	token, err := e.tokens.Generate(user)
	require.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Success, env.Message
}

func lostPetForm(t *testing.T, photoName string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fields := map[string]string{
		"petName":       "Mongshil",
		"species":       "dog",
		"lostDate":      "2026-08-01",
		"lostLocation":  "Riverside Park",
		"lat":           "37.5326",
		"lon":           "127.0246",
		"contactNumber": "010-1234-5678",
		"notifyOnSeen":  "true",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photoName != "" {
		part, err := mw.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "ari@example.com")

	rec := env.do(t, http.MethodGet, "/api/users/me", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool        `json:"success"`
		User    *model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ari@example.com", resp.User.ID)
	assert.NotContains(t, rec.Body.String(), "password", "hash must never leak")
}

func TestRegisterDuplicateIs409(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "dup@example.com")

	rec := env.doJSON(t, http.MethodPost, "/register", "", map[string]string{
		"id": "dup@example.com", "password": "correct horse", "nickname": "n", "name": "N",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	success, _ := decodeEnvelope(t, rec)
	assert.False(t, success)
}

func TestLoginWrongPasswordMatchesUnknownID(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "ari@example.com")

	wrong := env.doJSON(t, http.MethodPost, "/login", "", map[string]string{"id": "ari@example.com", "password": "nope"})
	unknown := env.doJSON(t, http.MethodPost, "/login", "", map[string]string{"id": "ghost@example.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestGoogleLogin(t *testing.T) {
	env := newTestEnv(t)
	env.google.user = &auth.GoogleUser{Subject: "g-1", Email: "soc@example.com", Name: "Soc"}

	rec := env.doJSON(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "cred"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.ProviderGoogle, resp.User.Provider)

	env.google.err = errors.New("bad token")
	rec = env.doJSON(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLostPetCreateRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := lostPetForm(t, "", nil)
	rec := env.do(t, http.MethodPost, "/lost-pets", "", body, contentType)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLostPetCreateAndBoards(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	body, contentType := lostPetForm(t, "mongshil.jpg", []byte("jpegbytes"))
	rec := env.do(t, http.MethodPost, "/lost-pets", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Post *model.LostPetPost `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Post.PhotoURL, "https://cdn.test/lost-pets/"))
	assert.True(t, created.Post.NotifyOnSeen)

	rec = env.do(t, http.MethodGet, "/lost-pets", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Posts []model.LostPetPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Posts, 1)

	rec = env.do(t, http.MethodGet, "/missing-posts", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Posts []boardItem `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Posts, 1)
	assert.Equal(t, "Mongshil", board.Posts[0].Title)
	assert.Equal(t, "Riverside Park", board.Posts[0].Location)
}

func TestLostPetDetail(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	body, contentType := lostPetForm(t, "mongshil.jpg", []byte("jpegbytes"))
	rec := env.do(t, http.MethodPost, "/lost-pets", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Post *model.LostPetPost `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/lost-pets/%d", created.Post.ID), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Post *model.LostPetPost `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Mongshil", got.Post.PetName)
	assert.Equal(t, created.Post.PhotoURL, got.Post.PhotoURL)

	rec = env.do(t, http.MethodGet, "/lost-pets/9999", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOversizePhotoIs400(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	oversize := bytes.Repeat([]byte("x"), storage.MaxUploadBytes+1)
	body, contentType := lostPetForm(t, "huge.jpg", oversize)
	rec := env.do(t, http.MethodPost, "/lost-pets", token, body, contentType)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	ok, msg := decodeEnvelope(t, rec)
	assert.False(t, ok)
	assert.Contains(t, msg, "10MB")

	// The rejected upload must not leave a row behind.
	rec = env.do(t, http.MethodGet, "/lost-pets", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Posts []model.LostPetPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Posts)
}

func TestLostPetMissingFieldIs400(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("petName", "Mongshil"))
	require.NoError(t, mw.Close())

	rec := env.do(t, http.MethodPost, "/lost-pets", token, buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMypetsOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerAndLogin(t, "owner@example.com")
	stranger := env.registerAndLogin(t, "stranger@example.com")

	body, contentType := lostPetForm(t, "", nil)
	rec := env.do(t, http.MethodPost, "/lost-pets", owner, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Post *model.LostPetPost `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Post.ID

	// The stranger sees an empty my-page and cannot delete the post.
	rec = env.do(t, http.MethodGet, "/mypets/", stranger, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Posts []model.LostPetPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Empty(t, mine.Posts)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/mypets/%d", id), stranger, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/mypets/%d", id), owner, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/mypets/%d", id), owner, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func reportForm(t *testing.T, withPhoto bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range map[string]string{
		"title":          "White dog near the station",
		"reportDate":     "2026-08-15",
		"reportLocation": "Central Station exit 3",
		"contact":        "010-9876-5432",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withPhoto {
		part, err := mw.CreateFormFile("photo", "sighting.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("pngbytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestReportCreateRequiresPhoto(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "rep@example.com")

	body, contentType := reportForm(t, false)
	rec := env.do(t, http.MethodPost, "/reports", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType = reportForm(t, true)
	rec = env.do(t, http.MethodPost, "/reports", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/witness-posts", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Posts []boardItem `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Posts, 1)
	assert.Equal(t, "White dog near the station", board.Posts[0].Title)
}

func TestReportDetail(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "rep@example.com")

	body, contentType := reportForm(t, true)
	rec := env.do(t, http.MethodPost, "/reports", token, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Report *model.SightingReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/reports/%d", created.Report.ID), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Report *model.SightingReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "White dog near the station", got.Report.Title)

	rec = env.do(t, http.MethodGet, "/reports/9999", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportUploadFailureIs502(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "rep@example.com")
	env.storage.uploadErr = errors.New("bucket down")

	body, contentType := reportForm(t, true)
	rec := env.do(t, http.MethodPost, "/reports", token, body, contentType)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCommunityFlow(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerAndLogin(t, "author@example.com")
	commenter := env.registerAndLogin(t, "commenter@example.com")

	rec := env.doJSON(t, http.MethodPost, "/community/", author, map[string]string{
		"title": "Vet recommendations?", "category": "question", "content": "Near Mapo.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Post *model.CommunityPost `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.doJSON(t, http.MethodPost, fmt.Sprintf("/community/%d/comments", created.Post.ID), commenter,
		map[string]string{"content": "Try 3rd street."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/community/%d", created.Post.ID), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Post     *model.CommunityPost `json:"post"`
		Comments []model.Comment      `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "nick-author@example.com", detail.Post.AuthorName)
	require.Len(t, detail.Comments, 1)

	// Post author cannot delete someone else's comment.
	rec = env.do(t, http.MethodDelete,
		fmt.Sprintf("/community/%d/comments/%d", created.Post.ID, detail.Comments[0].ID), author, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/community/%d", created.Post.ID), author, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/community/%d", created.Post.ID), "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminModeration(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerAndLogin(t, "owner@example.com")
	admin := env.adminToken(t)

	body, contentType := lostPetForm(t, "", nil)
	rec := env.do(t, http.MethodPost, "/lost-pets", owner, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Post *model.LostPetPost `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A general user is rejected by the role middleware.
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/delete/missing/%d", created.Post.ID), owner, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/delete/missing/%d", created.Post.ID), admin, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/lost-pets", "", nil, "")
	var list struct {
		Posts []model.LostPetPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Posts)
}

func TestPathIDValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	rec := env.do(t, http.MethodDelete, "/mypets/abc", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/mypets/0", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/register", "", strings.NewReader("{not json"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	success, _ := decodeEnvelope(t, rec)
	assert.False(t, success)
}
