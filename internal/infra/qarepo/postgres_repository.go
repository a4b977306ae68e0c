package qarepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/swing-coach/internal/domain/reportqa"
)

// PostgresRepository implements reportqa.QuestionRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindExact fetches by literal question text within one report.
func (r *PostgresRepository) FindExact(ctx context.Context, reportID, question string) (reportqa.QuestionRecord, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, question_text, semantic_hash
		FROM report_questions
		WHERE report_id = $1 AND question_text = $2
		LIMIT 1
	`, reportID, question)
	if err != nil {
		return reportqa.QuestionRecord{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return reportqa.QuestionRecord{}, false, rows.Err()
	}
	record, err := scanQuestionRecord(rows)
	if err != nil {
		return reportqa.QuestionRecord{}, false, err
	}
	return record, true, rows.Err()
}

// FindBySemanticHash fetches by deterministic hash within one report.
func (r *PostgresRepository) FindBySemanticHash(ctx context.Context, reportID string, hash uint64) (reportqa.QuestionRecord, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, question_text, semantic_hash
		FROM report_questions
		WHERE report_id = $1 AND semantic_hash = $2
		LIMIT 1
	`, reportID, int64(hash))
	if err != nil {
		return reportqa.QuestionRecord{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return reportqa.QuestionRecord{}, false, rows.Err()
	}
	record, err := scanQuestionRecord(rows)
	if err != nil {
		return reportqa.QuestionRecord{}, false, err
	}
	return record, true, rows.Err()
}

// FindNearest returns the closest pgvector match for the report.
func (r *PostgresRepository) FindNearest(ctx context.Context, reportID string, embedding []float32) (reportqa.SimilarityMatch, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, question_text, semantic_hash, embedding <-> $2 AS distance
		FROM report_questions
		WHERE report_id = $1
		ORDER BY embedding <-> $2
		LIMIT 1
	`, reportID, pgvector.NewVector(embedding))
	if err != nil {
		return reportqa.SimilarityMatch{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return reportqa.SimilarityMatch{}, false, rows.Err()
	}
	var distance float64
	record, err := scanQuestionRecord(rows, &distance)
	if err != nil {
		return reportqa.SimilarityMatch{}, false, err
	}
	match := reportqa.SimilarityMatch{
		Question: record,
		Distance: distance,
	}
	return match, true, rows.Err()
}

// InsertQuestion inserts a new question row.
func (r *PostgresRepository) InsertQuestion(ctx context.Context, reportID, question string, embedding []float32, hash *uint64) (reportqa.QuestionRecord, error) {
	var hashValue any
	if hash != nil {
		hashValue = int64(*hash)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO report_questions (report_id, question_text, embedding, semantic_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, report_id, question_text, semantic_hash
	`, reportID, question, pgvector.NewVector(embedding), hashValue)
	record, err := scanQuestionRecord(row)
	if err != nil {
		return reportqa.QuestionRecord{}, err
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestionRecord(row rowScanner, extras ...any) (reportqa.QuestionRecord, error) {
	var (
		record   reportqa.QuestionRecord
		semantic sql.NullInt64
	)
	args := []any{&record.ID, &record.ReportID, &record.QuestionText, &semantic}
	args = append(args, extras...)
	if err := row.Scan(args...); err != nil {
		return reportqa.QuestionRecord{}, err
	}
	if semantic.Valid {
		hash := uint64(semantic.Int64)
		record.SemanticHash = &hash
	}
	return record, nil
}

var _ reportqa.QuestionRepository = (*PostgresRepository)(nil)
