package service

import (
	"context"
	"strings"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/media"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// QuestionService posts questions under the daily quota and handles edits and votes.
type QuestionService struct {
	questions QuestionStore
	subs      *SubscriptionService
	media     media.Store
	validate  *validator.Validate
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, subs *SubscriptionService, store media.Store, log logrus.FieldLogger) *QuestionService {
	return &QuestionService{
		questions: questions,
		subs:      subs,
		media:     store,
		validate:  newValidator(),
		log:       log,
		now:       time.Now,
	}
}

// Ask admits, stores and then counts one question. Usage is only recorded once
// the question is saved. video may be nil.
func (s *QuestionService) Ask(ctx context.Context, userID string, req *domain.AskQuestionRequest, video *media.Upload) (*domain.AskQuestionResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}
	if video != nil && video.Kind != media.KindVideo {
		return nil, domain.ErrValidation("only video attachments are allowed on questions")
	}

	sub, err := s.subs.Admit(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := &domain.Question{
		ID:         domain.NewID(),
		Title:      req.Title,
		Body:       req.Body,
		Tags:       cleanTags(req.Tags),
		UserPosted: req.UserPosted,
		UserID:     userID,
		UpVotes:    []string{},
		DownVotes:  []string{},
		AskedOn:    s.now(),
	}
	if video != nil {
		url, err := s.media.Save(ctx, "questions", *video)
		if err != nil {
			return nil, domain.ErrInternal("failed to store video", err)
		}
		q.HasVideo = true
		q.VideoURL = url
	}

	if err := s.questions.Create(ctx, q); err != nil {
		if q.HasVideo {
			discardUpload(ctx, s.media, s.log, q.VideoURL)
		}
		return nil, domain.ErrInternal("failed to post question", err)
	}

	sub, err = s.subs.RecordUsage(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"question_id": q.ID,
		"plan":        sub.Tier,
		"used_today":  sub.QuestionsUsedToday,
	}).Info("question posted")

	return &domain.AskQuestionResponse{
		Message:            "Question posted successfully",
		Question:           q,
		QuestionsRemaining: domain.Remaining(sub),
	}, nil
}

// List returns questions newest first.
func (s *QuestionService) List(ctx context.Context, filter domain.QuestionFilter) ([]*domain.Question, error) {
	questions, err := s.questions.List(ctx, filter)
	if err != nil {
		return nil, domain.ErrInternal("failed to list questions", err)
	}
	return questions, nil
}

func (s *QuestionService) find(ctx context.Context, id string) (*domain.Question, error) {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find question", err)
	}
	if q == nil {
		return nil, domain.ErrNotFound("Question not found")
	}
	return q, nil
}

func (s *QuestionService) owned(ctx context.Context, userID, id string) (*domain.Question, error) {
	q, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.UserID != userID {
		return nil, domain.ErrForbidden(domain.ReasonNotOwner, "You can only modify your own questions")
	}
	return q, nil
}

// Edit updates the non-empty fields of one of the caller's questions.
func (s *QuestionService) Edit(ctx context.Context, userID, id string, req *domain.EditQuestionRequest) (*domain.Question, error) {
	q, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(req.Title); t != "" {
		q.Title = t
	}
	if b := strings.TrimSpace(req.Body); b != "" {
		q.Body = b
	}
	if req.Tags != nil {
		q.Tags = cleanTags(req.Tags)
	}
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, domain.ErrInternal("failed to update question", err)
	}
	return q, nil
}

// Delete removes one of the caller's questions. Quota already used is not refunded.
func (s *QuestionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return domain.ErrInternal("failed to delete question", err)
	}
	return nil
}

// Vote toggles the caller's up or down vote.
func (s *QuestionService) Vote(ctx context.Context, userID, id string, req *domain.VoteRequest) (*domain.Question, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}
	q, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	domain.ApplyVote(q, userID, req.Value)
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, domain.ErrInternal("failed to record vote", err)
	}
	return q, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
