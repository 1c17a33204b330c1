package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classroom/internal/model"
	"classroom/internal/repository"

	"github.com/rs/zerolog"
)

// PostService defines the interface for class stream posts
type PostService interface {
	CreatePost(ctx context.Context, callerID, classID, title, body string, uploads []Upload) (*model.Post, error)
	ListPosts(ctx context.Context, callerID, classID string) ([]model.Post, error)
	// UpdatePost edits the post. With replaceFiles the existing attachments
	// are removed before the new uploads are stored.
	UpdatePost(ctx context.Context, callerID, postID, title, body string, replaceFiles bool, uploads []Upload) (*model.Post, error)
	DeletePost(ctx context.Context, callerID, postID string) error
}

type postService struct {
	posts  repository.PostRepository
	files  repository.FileRepository
	store  FileService
	access *accessChecker
	logger zerolog.Logger
}

func NewPostService(repos Repositories, store FileService, logger zerolog.Logger) PostService {
	return &postService{
		posts:  repos.Posts,
		files:  repos.Files,
		store:  store,
		access: newAccessChecker(repos),
		logger: logger.With().Str("service", "PostService").Logger(),
	}
}

func validatePost(title, body string) (string, string, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return "", "", validation("title is required")
	}
	if len([]rune(title)) > model.MaxTitleLength {
		return "", "", validation(titleTooLong)
	}
	return title, body, nil
}

func (s *postService) CreatePost(ctx context.Context, callerID, classID, title, body string, uploads []Upload) (*model.Post, error) {
	title, body, err := validatePost(title, body)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireStaff(ctx, callerID, classID); err != nil {
		return nil, err
	}

	post := &model.Post{ClassID: classID, AuthorID: callerID, Title: title, Body: body}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	post.Files, err = s.store.Attach(ctx, classID, callerID, FileParent{Kind: model.FileKindPost, ID: post.ID}, uploads)
	if err != nil {
		s.logger.Error().Err(err).Str("post_id", post.ID).Msg("Post created but attachments failed")
		return nil, err
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, callerID, classID string) ([]model.Post, error) {
	if _, err := s.access.load(ctx, callerID, classID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListPostsByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	files, err := s.files.ListFilesByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing post files: %w", err)
	}
	byPost := map[string][]model.File{}
	for _, f := range files {
		if f.PostID != nil {
			byPost[*f.PostID] = append(byPost[*f.PostID], f)
		}
	}
	for i := range posts {
		posts[i].Files = byPost[posts[i].ID]
		if posts[i].Files == nil {
			posts[i].Files = []model.File{}
		}
	}
	return posts, nil
}

func (s *postService) loadForStaff(ctx context.Context, callerID, postID string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if _, err := s.access.requireStaff(ctx, callerID, post.ClassID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, callerID, postID, title, body string, replaceFiles bool, uploads []Upload) (*model.Post, error) {
	title, body, err := validatePost(title, body)
	if err != nil {
		return nil, err
	}
	post, err := s.loadForStaff(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}

	post.Title, post.Body = title, body
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("updating post: %w", err)
	}

	existing, err := s.files.ListFilesByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing post files: %w", err)
	}
	if replaceFiles {
		if err := s.store.Remove(ctx, existing); err != nil {
			return nil, err
		}
		existing = nil
	}
	added, err := s.store.Attach(ctx, post.ClassID, callerID, FileParent{Kind: model.FileKindPost, ID: post.ID}, uploads)
	if err != nil {
		return nil, err
	}
	post.Files = append(existing, added...)
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, callerID, postID string) error {
	post, err := s.loadForStaff(ctx, callerID, postID)
	if err != nil {
		return err
	}
	files, err := s.files.ListFilesByPostID(ctx, postID)
	if err != nil {
		return fmt.Errorf("listing post files: %w", err)
	}
	if err := s.store.Remove(ctx, files); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}
