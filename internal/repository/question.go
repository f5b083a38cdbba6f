package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codequest/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionColumns = `id, title, body, tags, user_posted, user_id, has_video, video_url, up_votes, down_votes, asked_on`

// QuestionRepository persists questions.
type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Title, &q.Body, &q.Tags, &q.UserPosted, &q.UserID,
		&q.HasVideo, &q.VideoURL, &q.UpVotes, &q.DownVotes, &q.AskedOn)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts a question.
func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, q.ID, q.Title, q.Body, nonNil(q.Tags), q.UserPosted, q.UserID,
		q.HasVideo, q.VideoURL, nonNil(q.UpVotes), nonNil(q.DownVotes), q.AskedOn)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// List returns questions newest first.
func (r *QuestionRepository) List(ctx context.Context, filter domain.QuestionFilter) ([]*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	switch filter {
	case domain.QuestionsWithVideo:
		query += ` WHERE video_url <> ''`
	case domain.QuestionsTextOnly:
		query += ` WHERE video_url = ''`
	}
	query += ` ORDER BY asked_on DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := []*domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// FindByID returns a question, or nil if absent.
func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*domain.Question, error) {
	q, err := scanQuestion(r.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return q, nil
}

// Update writes the editable fields and vote sets of q.
func (r *QuestionRepository) Update(ctx context.Context, q *domain.Question) error {
	_, err := r.db.Exec(ctx, `
		UPDATE questions SET title = $2, body = $3, tags = $4, up_votes = $5, down_votes = $6
		WHERE id = $1
	`, q.ID, q.Title, q.Body, nonNil(q.Tags), nonNil(q.UpVotes), nonNil(q.DownVotes))
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}
