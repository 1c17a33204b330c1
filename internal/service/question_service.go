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

type QuestionService interface {
	AskQuestion(ctx context.Context, userID, classID, title, body string) (*model.Question, error)
	// ListQuestions returns the class threads, newest first, with answers attached
	ListQuestions(ctx context.Context, callerID, classID string) ([]model.Question, error)
	Answer(ctx context.Context, userID, questionID, body string) (*model.Answer, error)
	DeleteQuestion(ctx context.Context, callerID, questionID string) error
	DeleteAnswer(ctx context.Context, callerID, answerID string) error
}

type questionService struct {
	questions repository.QuestionRepository
	access    *accessChecker
	logger    zerolog.Logger
}

func NewQuestionService(repos Repositories, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: repos.Questions,
		access:    newAccessChecker(repos),
		logger:    logger.With().Str("service", "QuestionService").Logger(),
	}
}

func (s *questionService) AskQuestion(ctx context.Context, userID, classID, title, body string) (*model.Question, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return nil, validation("title is required")
	}
	if _, err := s.access.load(ctx, userID, classID); err != nil {
		return nil, err
	}
	q := &model.Question{ClassID: classID, AuthorID: userID, Title: title, Body: body, Answers: []model.Answer{}}
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("creating question: %w", err)
	}
	return q, nil
}

func (s *questionService) ListQuestions(ctx context.Context, callerID, classID string) ([]model.Question, error) {
	if _, err := s.access.load(ctx, callerID, classID); err != nil {
		return nil, err
	}
	questions, err := s.questions.ListQuestionsByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	answers, err := s.questions.ListAnswersByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	byQuestion := map[string][]model.Answer{}
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	for i := range questions {
		questions[i].Answers = byQuestion[questions[i].ID]
		if questions[i].Answers == nil {
			questions[i].Answers = []model.Answer{}
		}
	}
	return questions, nil
}

func (s *questionService) question(ctx context.Context, questionID string) (*model.Question, error) {
	q, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("getting question: %w", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

func (s *questionService) Answer(ctx context.Context, userID, questionID, body string) (*model.Answer, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, validation("answer body is required")
	}
	q, err := s.question(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.load(ctx, userID, q.ClassID); err != nil {
		return nil, err
	}
	a := &model.Answer{QuestionID: q.ID, ClassID: q.ClassID, AuthorID: userID, Body: body}
	if err := s.questions.CreateAnswer(ctx, a); err != nil {
		return nil, fmt.Errorf("creating answer: %w", err)
	}
	return a, nil
}

// canModerate allows the author or class staff.
func (s *questionService) canModerate(ctx context.Context, callerID, classID, authorID string) error {
	a, err := s.access.load(ctx, callerID, classID)
	if err != nil {
		return err
	}
	if callerID != authorID && !a.IsStaff() {
		return ErrForbidden
	}
	return nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, callerID, questionID string) error {
	q, err := s.question(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.canModerate(ctx, callerID, q.ClassID, q.AuthorID); err != nil {
		return err
	}
	if err := s.questions.DeleteAnswersByQuestionID(ctx, q.ID); err != nil {
		return fmt.Errorf("deleting answers: %w", err)
	}
	if err := s.questions.DeleteQuestion(ctx, q.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("deleting question: %w", err)
	}
	return nil
}

func (s *questionService) DeleteAnswer(ctx context.Context, callerID, answerID string) error {
	a, err := s.questions.GetAnswerByID(ctx, answerID)
	if err != nil {
		return fmt.Errorf("getting answer: %w", err)
	}
	if a == nil {
		return ErrAnswerNotFound
	}
	if err := s.canModerate(ctx, callerID, a.ClassID, a.AuthorID); err != nil {
		return err
	}
	if err := s.questions.DeleteAnswer(ctx, a.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("deleting answer: %w", err)
	}
	return nil
}
