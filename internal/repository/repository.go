// Package repository declares the storage interfaces the service layer
// depends on. The concrete implementation lives in repository/store; tests
// substitute hand-written fakes.
package repository

import (
	"context"

	"github.com/petlink/petlink/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// Create inserts a new user and fills in UserNum and CreatedAt.
	// Returns a conflict error when the login id is already taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUserNum(ctx context.Context, userNum int64) (*model.User, error)
}

type LostPetRepository interface {
	Create(ctx context.Context, post *model.LostPetPost) error
	GetByID(ctx context.Context, id int64) (*model.LostPetPost, error)
	List(ctx context.Context, opts ListOptions) ([]model.LostPetPost, error)
	ListByOwner(ctx context.Context, userNum int64) ([]model.LostPetPost, error)
	Update(ctx context.Context, post *model.LostPetPost) error
	Delete(ctx context.Context, id int64) error
}

type SightingRepository interface {
	Create(ctx context.Context, report *model.SightingReport) error
	GetByID(ctx context.Context, id int64) (*model.SightingReport, error)
	List(ctx context.Context, opts ListOptions) ([]model.SightingReport, error)
	Delete(ctx context.Context, id int64) error
}

type CommunityRepository interface {
	CreatePost(ctx context.Context, post *model.CommunityPost) error
	GetPost(ctx context.Context, id int64) (*model.CommunityPost, error)
	ListPosts(ctx context.Context, opts ListOptions) ([]model.CommunityPost, error)
	DeletePost(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id int64) (*model.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

type AnimalRepository interface {
	List(ctx context.Context, opts ListOptions) ([]model.ShelterAnimal, error)
}
