package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// Hand-written in-memory fakes, one per repository interface. A fake (not a
// mock framework) keeps the tests dependency-free and readable.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func generalClaims(userNum int64) *auth.Claims {
	return &auth.Claims{UserID: "user@example.com", UserNum: userNum, Nickname: "tester", Role: model.RoleGeneral}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: "admin@example.com", UserNum: 999, Nickname: "admin", Role: model.RoleAdmin}
}

// ----- users -----

type fakeUserRepo struct {
	byID    map[string]*model.User
	nextNum int64
	// set to simulate a database failure
	createErr error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*model.User), nextNum: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[user.ID]; ok {
		return apperror.Conflict("user", user.ID)
	}
	user.UserNum = f.nextNum
	f.nextNum++
	user.CreatedAt = time.Now()
	clone := *user
	f.byID[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFoundID("user", id)
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByUserNum(ctx context.Context, userNum int64) (*model.User, error) {
	for _, user := range f.byID {
		if user.UserNum == userNum {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperror.NotFound("user", userNum)
}

// ----- google verifier -----

type fakeGoogleVerifier struct {
	user *auth.GoogleUser
	err  error
}

var _ auth.GoogleVerifier = (*fakeGoogleVerifier)(nil)

func (f *fakeGoogleVerifier) Verify(ctx context.Context, credential string) (*auth.GoogleUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

// ----- object storage -----

type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

var _ ObjectStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[key] = content
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "https://cdn.test/")
}

// ----- lost pets -----

type fakeLostPetRepo struct {
	posts  map[int64]*model.LostPetPost
	nextID int64
}

var _ repository.LostPetRepository = (*fakeLostPetRepo)(nil)

func newFakeLostPetRepo() *fakeLostPetRepo {
	return &fakeLostPetRepo{posts: make(map[int64]*model.LostPetPost), nextID: 1}
}

func (f *fakeLostPetRepo) Create(ctx context.Context, post *model.LostPetPost) error {
	post.ID = f.nextID
	f.nextID++
	post.CreatedAt = time.Now()
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakeLostPetRepo) GetByID(ctx context.Context, id int64) (*model.LostPetPost, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("lost-pet post", id)
	}
	clone := *post
	return &clone, nil
}

func (f *fakeLostPetRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.LostPetPost, error) {
	var out []model.LostPetPost
	for _, post := range f.posts {
		out = append(out, *post)
	}
	return out, nil
}

func (f *fakeLostPetRepo) ListByOwner(ctx context.Context, userNum int64) ([]model.LostPetPost, error) {
	var out []model.LostPetPost
	for _, post := range f.posts {
		if post.UserNum == userNum {
			out = append(out, *post)
		}
	}
	return out, nil
}

func (f *fakeLostPetRepo) Update(ctx context.Context, post *model.LostPetPost) error {
	if _, ok := f.posts[post.ID]; !ok {
		return apperror.NotFound("lost-pet post", post.ID)
	}
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakeLostPetRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("lost-pet post", id)
	}
	delete(f.posts, id)
	return nil
}

// ----- sighting reports -----

type fakeSightingRepo struct {
	reports   map[int64]*model.SightingReport
	nextID    int64
	createErr error
}

var _ repository.SightingRepository = (*fakeSightingRepo)(nil)

func newFakeSightingRepo() *fakeSightingRepo {
	return &fakeSightingRepo{reports: make(map[int64]*model.SightingReport), nextID: 1}
}

func (f *fakeSightingRepo) Create(ctx context.Context, report *model.SightingReport) error {
	if f.createErr != nil {
		return f.createErr
	}
	report.ID = f.nextID
	f.nextID++
	report.CreatedAt = time.Now()
	clone := *report
	f.reports[report.ID] = &clone
	return nil
}

func (f *fakeSightingRepo) GetByID(ctx context.Context, id int64) (*model.SightingReport, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, apperror.NotFound("sighting report", id)
	}
	clone := *report
	return &clone, nil
}

func (f *fakeSightingRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.SightingReport, error) {
	var out []model.SightingReport
	for _, report := range f.reports {
		out = append(out, *report)
	}
	return out, nil
}

func (f *fakeSightingRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.reports[id]; !ok {
		return apperror.NotFound("sighting report", id)
	}
	delete(f.reports, id)
	return nil
}

// ----- community board -----

type fakeCommunityRepo struct {
	posts       map[int64]*model.CommunityPost
	comments    map[int64]*model.Comment
	nextPost    int64
	nextComment int64
}

var _ repository.CommunityRepository = (*fakeCommunityRepo)(nil)

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{
		posts:       make(map[int64]*model.CommunityPost),
		comments:    make(map[int64]*model.Comment),
		nextPost:    1,
		nextComment: 1,
	}
}

func (f *fakeCommunityRepo) CreatePost(ctx context.Context, post *model.CommunityPost) error {
	post.ID = f.nextPost
	f.nextPost++
	post.CreatedAt = time.Now()
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakeCommunityRepo) GetPost(ctx context.Context, id int64) (*model.CommunityPost, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("community post", id)
	}
	clone := *post
	return &clone, nil
}

func (f *fakeCommunityRepo) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.CommunityPost, error) {
	var out []model.CommunityPost
	for _, post := range f.posts {
		out = append(out, *post)
	}
	return out, nil
}

func (f *fakeCommunityRepo) DeletePost(ctx context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("community post", id)
	}
	delete(f.posts, id)
	// cascade, like the real schema
	for cid, comment := range f.comments {
		if comment.PostID == id {
			delete(f.comments, cid)
		}
	}
	return nil
}

func (f *fakeCommunityRepo) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = f.nextComment
	f.nextComment++
	comment.CreatedAt = time.Now()
	clone := *comment
	f.comments[comment.ID] = &clone
	return nil
}

func (f *fakeCommunityRepo) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	clone := *comment
	return &clone, nil
}

func (f *fakeCommunityRepo) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	var out []model.Comment
	for _, comment := range f.comments {
		if comment.PostID == postID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (f *fakeCommunityRepo) DeleteComment(ctx context.Context, id int64) error {
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

var errBoom = errors.New("boom")
