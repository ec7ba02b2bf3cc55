package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestService_ListTopics(t *testing.T) {
	type testCase struct {
		name   string
		filter catalog.Filter
		setup  func(mock pgxmock.PgxPoolIface)
		expect []model.Ref
	}
	testCases := []testCase{
		{
			name:   "category",
			filter: catalog.Filter{Category: "science"},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"category", "key"}).
					AddRow("science", "atoms").
					AddRow("science", "cells")
				mock.ExpectQuery(`SELECT category, key FROM topics WHERE category = \$1`).
					WithArgs("science").
					WillReturnRows(rows)
			},
			expect: []model.Ref{{Category: "science", Key: "atoms"}, {Category: "science", Key: "cells"}},
		},
		{
			name:   "pattern filtered client side",
			filter: catalog.Filter{Pattern: "*/a*"},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"category", "key"}).
					AddRow("history", "rome").
					AddRow("science", "atoms")
				mock.ExpectQuery(`SELECT category, key FROM topics`).WillReturnRows(rows)
			},
			expect: []model.Ref{{Category: "science", Key: "atoms"}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := newMock(t)
			tc.setup(mock)
			refs, err := New(mock).ListTopics(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, refs)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestService_GetTopic(t *testing.T) {
	ref := model.Ref{Category: "science", Key: "atoms"}
	verified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	type testCase struct {
		name      string
		setup     func(mock pgxmock.PgxPoolIface)
		expectErr func(err error) bool
		check     func(t *testing.T, topic *model.Topic)
	}
	testCases := []testCase{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(topicColumns).AddRow(
					"science", "atoms", "Atoms", "Atoms are small.",
					[]byte(`[{"title":"Intro","url":"https://example.com"}]`),
					[]byte(`{"focus":["structure"]}`),
					verified,
					[]byte(`[{"changeId":"c1","updateType":"minor","appliedAt":"2026-01-02T03:04:05Z"}]`),
				)
				mock.ExpectQuery(`SELECT category, key, title, content`).
					WithArgs("science", "atoms").
					WillReturnRows(rows)
			},
			check: func(t *testing.T, topic *model.Topic) {
				assert.Equal(t, ref, topic.Ref)
				assert.Equal(t, "Atoms are small.", topic.Content)
				assert.Equal(t, []string{"structure"}, topic.Hints.Focus)
				assert.Len(t, topic.References, 1)
				assert.Len(t, topic.UpdateHistory, 1)
				if assert.NotNil(t, topic.LastVerified) {
					assert.True(t, verified.Equal(*topic.LastVerified))
				}
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("science", "atoms").
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: types.IsNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := newMock(t)
			tc.setup(mock)
			topic, err := New(mock).GetTopic(context.Background(), ref)
			if tc.expectErr != nil {
				assert.True(t, tc.expectErr(err), err)
				return
			}
			require.NoError(t, err)
			tc.check(t, topic)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestService_UpdateTopic(t *testing.T) {
	ref := model.Ref{Category: "science", Key: "atoms"}
	record := model.UpdateRecord{ChangeID: "c2", UpdateType: model.UpdateMinor, AppliedAt: time.Now()}

	t.Run("applied", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT update_history FROM topics WHERE category = \$1 AND key = \$2 FOR UPDATE`).
			WithArgs("science", "atoms").
			WillReturnRows(pgxmock.NewRows([]string{"update_history"}).AddRow([]byte(`[]`)))
		mock.ExpectExec(`UPDATE topics SET content = \$1, last_verified = \$2, update_history = \$3`).
			WithArgs("new content", pgxmock.AnyArg(), pgxmock.AnyArg(), "science", "atoms").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := New(mock).UpdateTopic(context.Background(), ref, "new content", record)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("topic deleted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT update_history`).
			WithArgs("science", "atoms").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		err := New(mock).UpdateTopic(context.Background(), ref, "new content", record)
		assert.True(t, types.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
