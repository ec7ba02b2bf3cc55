// Package history keeps a bounded audit trail of completed runs.
package history

import (
	"context"

	"github.com/viant/curator/model"
	"github.com/viant/curator/service/dao"
)

// RecordKey is the store key of the history record.
const RecordKey = "curator/history"

type Service struct {
	record *dao.Record[[]model.HistoryEntry]
}

// New creates a history log over store.
func New(store dao.Service) *Service {
	return &Service{record: dao.NewRecord[[]model.HistoryEntry](store, RecordKey)}
}

// Append adds entry and discards the oldest entries beyond model.MaxHistory.
func (s *Service) Append(ctx context.Context, entry model.HistoryEntry) error {
	_, err := s.record.Mutate(ctx, func(entries *[]model.HistoryEntry) error {
		*entries = append(*entries, entry)
		if overflow := len(*entries) - model.MaxHistory; overflow > 0 {
			*entries = append([]model.HistoryEntry(nil), (*entries)[overflow:]...)
		}
		return nil
	})
	return err
}

// List returns entries oldest first.
func (s *Service) List(ctx context.Context) ([]model.HistoryEntry, error) {
	entries, err := s.record.Get(ctx)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// Latest returns the most recent entry, ok is false when no run completed yet.
func (s *Service) Latest(ctx context.Context) (entry model.HistoryEntry, ok bool, err error) {
	entries, err := s.List(ctx)
	if err != nil || len(entries) == 0 {
		return entry, false, err
	}
	return entries[len(entries)-1], true, nil
}
