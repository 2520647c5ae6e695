package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// MutationDecision is the outcome of the post-mutation authorization gate.
type MutationDecision int

const (
	// MutationPermitted allows the mutation to proceed.
	MutationPermitted MutationDecision = iota
	// MutationNotFound means the post does not exist.
	MutationNotFound
	// MutationUnauthenticated means no user is logged in.
	MutationUnauthenticated
	// MutationForbidden means the user is not the post's author.
	MutationForbidden
)

// AuthorizePostMutation decides whether current may mutate post. The checks
// run in order: existence, authentication, ownership. Handlers redirect
// anonymous users to login before ever reaching a mutation, but the gate
// guards against a direct bypass independently. The decision must be
// evaluated fresh on every mutating request and never cached: authorship and
// existence can change between requests.
func AuthorizePostMutation(current *models.User, post *models.Post) MutationDecision {
	if post == nil {
		return MutationNotFound
	}
	if current == nil {
		return MutationUnauthenticated
	}
	if post.AuthorID != current.ID {
		return MutationForbidden
	}
	return MutationPermitted
}

// PostService implements post CRUD with the ownership policy applied to
// every mutation. Creation is exempt from the gate: any authenticated user
// may create. Reads are world-readable.
type PostService struct {
	posts repository.PostRepository
}

// NewPostService returns a PostService over the given post store.
func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// List returns all posts with authors, most recent first.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	return s.posts.ListWithAuthors(ctx)
}

// Get returns the post with its author, or a not-found error.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByIDWithAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// Create inserts a new post authored by current. The store assigns the id
// and creation time.
func (s *PostService) Create(ctx context.Context, current *models.User, title, body string) (*models.Post, error) {
	if current == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}
	if title == "" {
		return nil, models.NewValidationError("Title is required.")
	}

	post := &models.Post{
		Title:    title,
		Body:     body,
		AuthorID: current.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetForMutation fetches a post and runs the gate, so GET forms for update
// and delete report 404/403 before rendering anything.
func (s *PostService) GetForMutation(ctx context.Context, current *models.User, id uint) (*models.Post, error) {
	post, err := s.posts.GetByIDWithAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gateError(current, post, id); err != nil {
		return nil, err
	}
	return post, nil
}

// Update overwrites the title and body of an owned post.
func (s *PostService) Update(ctx context.Context, current *models.User, id uint, title, body string) error {
	post, err := s.posts.GetByIDWithAuthor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gateError(current, post, id); err != nil {
		return err
	}
	if title == "" {
		return models.NewValidationError("Title is required.")
	}
	return s.posts.UpdateContent(ctx, id, title, body)
}

// Delete removes an owned post.
func (s *PostService) Delete(ctx context.Context, current *models.User, id uint) error {
	post, err := s.posts.GetByIDWithAuthor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gateError(current, post, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

// gateError maps a gate decision to the error taxonomy.
func (s *PostService) gateError(current *models.User, post *models.Post, id uint) error {
	switch AuthorizePostMutation(current, post) {
	case MutationNotFound:
		return models.NewNotFoundError("Post", id)
	case MutationUnauthenticated:
		return models.NewUnauthorizedError("Login required")
	case MutationForbidden:
		return models.NewForbiddenError("You can only modify your own posts")
	default:
		return nil
	}
}
