package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"eventreport/model"
)

// BatchItem is the result for one event of a batch.
type BatchItem struct {
	EventID   int64      `json:"eventId"`
	Generated *Generated `json:"generated,omitempty"`
	Err       error      `json:"-"`
	Error     string     `json:"error,omitempty"`
}

// GenerateBatch builds reports for several events with bounded concurrency.
// All events are loaded first; if two of them map to the same output path
// nothing is generated and ErrOutputConflict is returned. Per-event failures
// are reported in the items and do not stop the batch.
func (s *Service) GenerateBatch(ctx context.Context, eventIDs []int64) ([]BatchItem, error) {
	records := make([]*model.EventRecord, len(eventIDs))
	byPath := make(map[string][]int64)
	for i, id := range eventIDs {
		rec, err := s.loadEvent(id)
		if err != nil {
			return nil, err
		}
		records[i] = rec
		path := s.assembler.OutputPath(rec)
		byPath[path] = append(byPath[path], id)
	}
	if conflicts := conflicting(byPath); conflicts != "" {
		return nil, fmt.Errorf("%w: %s", ErrOutputConflict, conflicts)
	}

	items := make([]BatchItem, len(records))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gen, err := s.generate(ctx, rec)
			item := BatchItem{EventID: rec.ID, Generated: gen, Err: err}
			if err != nil {
				item.Error = err.Error()
				log.Warn().Err(err).Int64("event_id", rec.ID).Msg("batch item failed")
			}
			mu.Lock()
			items[i] = item
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, nil
}

func conflicting(byPath map[string][]int64) string {
	var out []string
	for path, ids := range byPath {
		if len(ids) > 1 {
			out = append(out, fmt.Sprintf("%s <- %v", path, ids))
		}
	}
	sort.Strings(out)
	return strings.Join(out, "; ")
}
