package postapp

import (
	"context"
	"fmt"
	"time"

	"snippets/internal/core/apperr"
	postEntity "snippets/internal/core/post"
	"snippets/internal/core/submission"
	"snippets/internal/metrics"
	postPort "snippets/internal/ports/post"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// GlobalFeedLimit caps the shared feed. Walls and the admin listing are uncapped.
const GlobalFeedLimit = 100

type PostService struct {
	PostRepository    postPort.PostRepository
	ProfileRepository postPort.ProfileRepository
	Timeout           time.Duration // upper bound for every backend call
	Logger            *zap.Logger
}

// NewPostService wires the post and profile output ports.
func NewPostService(
	postRepo postPort.PostRepository,
	profileRepo postPort.ProfileRepository,
	timeout time.Duration,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		PostRepository:    postRepo,
		ProfileRepository: profileRepo,
		Timeout:           timeout,
		Logger:            logger,
	}
}

// call runs fn under the backend timeout and classifies its error.
func (s *PostService) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	err := apperr.Backend(op, fn(ctx))
	if err != nil {
		kind := "domain"
		if be, ok := err.(*apperr.BackendError); ok {
			kind = be.Kind.String()
			metrics.RecordBackendError(op, kind)
		}
		s.Logger.Warn("backend call failed", zap.String("op", op), zap.String("kind", kind), zap.Error(err))
	}
	return err
}

// List returns posts newest first, optionally for one owner.
func (s *PostService) List(ctx context.Context, f postPort.Filter) ([]*postPort.PostDTO, error) {
	var posts []*postPort.PostDTO
	err := s.call(ctx, "list", func(ctx context.Context) error {
		var err error
		posts, err = s.PostRepository.Select(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*postPort.PostDTO{}
	}
	return posts, nil
}

// Create inserts one row owned by ownerID and returns its id.
func (s *PostService) Create(ctx context.Context, ownerID, imageURL string, caption *string) (string, error) {
	uid, err := uuid.FromString(ownerID)
	if err != nil {
		return "", fmt.Errorf("invalid ownerID: %w", err)
	}

	p := &postEntity.Post{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      uid,
		ImageURL:    imageURL,
		ContentText: caption,
		CreatedAt:   time.Now().UTC(),
	}

	var created *postEntity.Post
	err = s.call(ctx, "create", func(ctx context.Context) error {
		var err error
		created, err = s.PostRepository.Insert(ctx, p)
		return err
	})
	if err != nil {
		return "", err
	}
	s.Logger.Info("post created", zap.String("postID", created.ID.String()), zap.String("ownerID", ownerID))
	return created.ID.String(), nil
}

// Delete removes one row permanently. Copies saved by other users are
// independent rows and stay.
func (s *PostService) Delete(ctx context.Context, postID string) error {
	err := s.call(ctx, "delete", func(ctx context.Context) error {
		return s.PostRepository.DeleteByID(ctx, postID)
	})
	if err != nil {
		return err
	}
	s.Logger.Info("post deleted", zap.String("postID", postID))
	return nil
}

// ListProfiles returns every profile ordered by username; profiles without a
// name come last, ordered by user id.
func (s *PostService) ListProfiles(ctx context.Context) ([]*postPort.ProfileDTO, error) {
	var profiles []*postEntity.Profile
	err := s.call(ctx, "list_profiles", func(ctx context.Context) error {
		var err error
		profiles, err = s.ProfileRepository.SelectProfiles(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(profiles, func(p *postEntity.Profile, _ int) *postPort.ProfileDTO {
		return &postPort.ProfileDTO{
			UserID:      p.UserID.String(),
			Username:    p.Username,
			DisplayName: p.DisplayName(),
		}
	}), nil
}

func (s *PostService) FindProfile(ctx context.Context, userID string) (*postPort.ProfileDTO, error) {
	var p *postEntity.Profile
	err := s.call(ctx, "find_profile", func(ctx context.Context) error {
		var err error
		p, err = s.ProfileRepository.FindProfile(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &postPort.ProfileDTO{UserID: p.UserID.String(), Username: p.Username, DisplayName: p.DisplayName()}, nil
}

// GlobalFeedFilter clamps a requested limit to the global cap.
func GlobalFeedFilter(limit int) postPort.Filter {
	if limit <= 0 || limit > GlobalFeedLimit {
		limit = GlobalFeedLimit
	}
	return postPort.Filter{Limit: limit}
}

// WallFilter lists everything ownerID owns.
func WallFilter(ownerID string) postPort.Filter {
	return postPort.Filter{OwnerID: ownerID}
}

// Submit validates and stores a self-authored snippet.
func (s *PostService) Submit(ctx context.Context, actor postPort.Actor, sub submission.Submission) (string, error) {
	if actor.UserID() == "" {
		return "", apperr.ErrUnauthenticated
	}
	accepted, err := submission.Validate(sub)
	if err != nil {
		return "", err
	}
	return s.Create(ctx, actor.UserID(), accepted.ImageURL, accepted.Caption)
}

// SubmitFor stores a snippet on targetUserID's wall. Administrators only.
func (s *PostService) SubmitFor(ctx context.Context, actor postPort.Actor, targetUserID string, sub submission.Submission) (string, error) {
	if actor.UserID() == "" {
		return "", apperr.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return "", apperr.ErrForbidden
	}
	accepted, err := submission.ValidateTargeted(sub, targetUserID)
	if err != nil {
		return "", err
	}
	if _, err := s.FindProfile(ctx, accepted.TargetUserID); err != nil {
		if apperr.IsBackend(err) {
			return "", err
		}
		return "", apperr.NewValidation("user_id", submission.MsgSelectTarget)
	}
	return s.Create(ctx, accepted.TargetUserID, accepted.ImageURL, accepted.Caption)
}

// SaveToWall copies postID's image and caption into a new row owned by the
// actor. The original is left alone.
func (s *PostService) SaveToWall(ctx context.Context, actor postPort.Actor, postID string) (string, error) {
	if actor.UserID() == "" {
		return "", apperr.ErrUnauthenticated
	}
	original, err := s.find(ctx, postID)
	if err != nil {
		return "", err
	}
	return s.Create(ctx, actor.UserID(), original.ImageURL, original.ContentText)
}

// Remove deletes postID when the actor owns it or is an administrator.
func (s *PostService) Remove(ctx context.Context, actor postPort.Actor, postID string) error {
	if actor.UserID() == "" {
		return apperr.ErrUnauthenticated
	}
	p, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID.String() != actor.UserID() && !actor.IsAdmin() {
		return apperr.ErrForbidden
	}
	return s.Delete(ctx, postID)
}

// GlobalFeed is open to everyone, signed in or not.
func (s *PostService) GlobalFeed(ctx context.Context, limit int) ([]*postPort.PostDTO, error) {
	return s.List(ctx, GlobalFeedFilter(limit))
}

// Wall lists the actor's own posts.
func (s *PostService) Wall(ctx context.Context, actor postPort.Actor) ([]*postPort.PostDTO, error) {
	if actor.UserID() == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return s.List(ctx, WallFilter(actor.UserID()))
}

// AllPosts and Profiles back the admin dashboard.
func (s *PostService) AllPosts(ctx context.Context, actor postPort.Actor) ([]*postPort.PostDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.List(ctx, postPort.Filter{})
}

// Profiles is admin only.
func (s *PostService) Profiles(ctx context.Context, actor postPort.Actor) ([]*postPort.ProfileDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.ListProfiles(ctx)
}

func (s *PostService) find(ctx context.Context, postID string) (*postEntity.Post, error) {
	if _, err := uuid.FromString(postID); err != nil {
		return nil, fmt.Errorf("post %q: %w", postID, apperr.ErrNotFound)
	}
	var p *postEntity.Post
	err := s.call(ctx, "find", func(ctx context.Context) error {
		var err error
		p, err = s.PostRepository.FindByID(ctx, postID)
		return err
	})
	return p, err
}

func requireAdmin(actor postPort.Actor) error {
	if actor.UserID() == "" {
		return apperr.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return apperr.ErrForbidden
	}
	return nil
}

// Totals counts posts and profiles for the stats worker.
func (s *PostService) Totals(ctx context.Context) (posts, profiles int64, err error) {
	err = s.call(ctx, "count", func(ctx context.Context) error {
		if posts, err = s.PostRepository.Count(ctx); err != nil {
			return err
		}
		profiles, err = s.ProfileRepository.CountProfiles(ctx)
		return err
	})
	return posts, profiles, err
}

// Post looks one row up by id.
func (s *PostService) Post(ctx context.Context, postID string) (*postPort.PostDTO, error) {
	p, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &postPort.PostDTO{
		ID:          p.ID.String(),
		UserID:      p.UserID.String(),
		ImageURL:    p.ImageURL,
		ContentText: p.ContentText,
		CreatedAt:   p.CreatedAt,
	}, nil
}
