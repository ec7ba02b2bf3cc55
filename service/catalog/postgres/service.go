// Package postgres provides a topic catalog backed by a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
)

// Schema creates the topics table.
const Schema = `CREATE TABLE IF NOT EXISTS topics (
	category       TEXT NOT NULL,
	key            TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL DEFAULT '',
	refs           JSONB NOT NULL DEFAULT '[]',
	hints          JSONB NOT NULL DEFAULT '{}',
	last_verified  TIMESTAMPTZ,
	update_history JSONB NOT NULL DEFAULT '[]',
	PRIMARY KEY (category, key)
)`

const table = "topics"

var topicColumns = []string{"category", "key", "title", "content", "refs", "hints", "last_verified", "update_history"}

// Querier is satisfied by *pgxpool.Pool and pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	q       Querier
	builder squirrel.StatementBuilderType
}

// New creates a postgres catalog.
func New(q Querier) *Service {
	return &Service{q: q, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// EnsureSchema creates the topics table when missing.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create topics table: %w", err)
	}
	return nil
}

func (s *Service) ListTopics(ctx context.Context, filter catalog.Filter) ([]model.Ref, error) {
	query := s.builder.Select("category", "key").From(table).OrderBy("category ASC", "key ASC")
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	SQL, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build topics query: %w", err)
	}
	rows, err := s.q.Query(ctx, SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()
	var refs []model.Ref
	for rows.Next() {
		var ref model.Ref
		if err = rows.Scan(&ref.Category, &ref.Key); err != nil {
			return nil, fmt.Errorf("failed to scan topic ref: %w", err)
		}
		if filter.Match(ref) {
			refs = append(refs, ref)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return refs, nil
}

func (s *Service) GetTopic(ctx context.Context, ref model.Ref) (*model.Topic, error) {
	SQL, args, err := s.builder.Select(topicColumns...).From(table).
		Where(squirrel.Eq{"category": ref.Category, "key": ref.Key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build topic query: %w", err)
	}
	var (
		topic               = &model.Topic{}
		refsJSON, hintsJSON []byte
		historyJSON         []byte
		lastVerified        sql.NullTime
	)
	err = s.q.QueryRow(ctx, SQL, args...).Scan(&topic.Category, &topic.Key, &topic.Title, &topic.Content,
		&refsJSON, &hintsJSON, &lastVerified, &historyJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.NewNotFoundError("topic", ref.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load topic %s: %w", ref, err)
	}
	if lastVerified.Valid {
		at := lastVerified.Time
		topic.LastVerified = &at
	}
	if err = decodeJSON(refsJSON, &topic.References); err != nil {
		return nil, fmt.Errorf("failed to decode references of %s: %w", ref, err)
	}
	if err = decodeJSON(hintsJSON, &topic.Hints); err != nil {
		return nil, fmt.Errorf("failed to decode hints of %s: %w", ref, err)
	}
	if err = decodeJSON(historyJSON, &topic.UpdateHistory); err != nil {
		return nil, fmt.Errorf("failed to decode update history of %s: %w", ref, err)
	}
	return topic, nil
}

// UpdateTopic locks the row, appends the bounded history and writes content
// in one transaction.
func (s *Service) UpdateTopic(ctx context.Context, ref model.Ref, content string, record model.UpdateRecord) error {
	selectSQL, selectArgs, err := s.builder.Select("update_history").From(table).
		Where(squirrel.Eq{"category": ref.Category, "key": ref.Key}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build topic query: %w", err)
	}
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var historyJSON []byte
	err = tx.QueryRow(ctx, selectSQL, selectArgs...).Scan(&historyJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = tx.Rollback(ctx)
		return types.NewNotFoundError("topic", ref.String())
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to lock topic %s: %w", ref, err)
	}
	topic := &model.Topic{Ref: ref}
	if err = decodeJSON(historyJSON, &topic.UpdateHistory); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to decode update history of %s: %w", ref, err)
	}
	topic.Apply(content, record)
	if historyJSON, err = json.Marshal(topic.UpdateHistory); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to encode update history of %s: %w", ref, err)
	}
	updateSQL, updateArgs, err := s.builder.Update(table).
		Set("content", topic.Content).
		Set("last_verified", *topic.LastVerified).
		Set("update_history", historyJSON).
		Where(squirrel.Eq{"category": ref.Category, "key": ref.Key}).ToSql()
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to build topic update: %w", err)
	}
	if _, err = tx.Exec(ctx, updateSQL, updateArgs...); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to update topic %s: %w", ref, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit topic %s: %w", ref, err)
	}
	return nil
}

func decodeJSON(data []byte, dest interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

var _ catalog.Service = (*Service)(nil)
