/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package objects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/jobs"
	"github.com/dbanda/MediaCrush/logging"
)

// File statuses.
const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusReady         = "ready"
	StatusDone          = "done"
	StatusError         = "error"
	StatusTimeout       = "timeout"
	StatusUnrecognised  = "unrecognised"
	StatusInternalError = "internal_error"
)

var stateStatus = map[string]string{
	jobs.StatePending: StatusPending,
	jobs.StateStarted: StatusProcessing,
	jobs.StateReady:   StatusReady,
	jobs.StateSuccess: StatusDone,
}

// failure diagnostics are matched in this order
var failureStatus = []struct {
	exception string
	status    string
}{
	{"ProcessingException", StatusError},
	{"TimeoutException", StatusTimeout},
	{"UnrecognisedFormatException", StatusUnrecognised},
}

// Repository implements the entity behaviours that go through the store.
type Repository struct {
	store   *mediacrush.Store
	tracker jobs.Tracker
	logger  *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRepository creates a repository. A nil tracker reports every job as pending.
func NewRepository(store *mediacrush.Store, tracker jobs.Tracker, opts ...Option) *Repository {
	if tracker == nil {
		tracker = jobs.NewStaticTracker()
	}
	r := &Repository{
		store:   store,
		tracker: tracker,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Items resolves the album's files in order. References that no longer
// resolve are dropped: the pruned list is saved, or the album is deleted when
// nothing is left. Concurrent prunes of one album are last-writer-wins.
func (r *Repository) Items(ctx context.Context, album *Album) ([]*File, error) {
	files := make([]*File, 0, len(album.Items))
	kept := make([]string, 0, len(album.Items))
	for _, id := range album.Items {
		f, err := mediacrush.Load[*File](ctx, r.store, id)
		if err != nil {
			return nil, fmt.Errorf("album %s: %w", album.Identifier(), err)
		}
		if f == nil {
			continue
		}
		files = append(files, f)
		kept = append(kept, id)
	}

	dropped := len(album.Items) - len(kept)
	if dropped == 0 {
		return files, nil
	}
	r.logger.Debug("pruning dead album references", "album", album.Identifier(), "dropped", dropped)

	if len(kept) == 0 {
		if err := r.store.Delete(ctx, album.Identifier(), "album"); err != nil {
			return nil, err
		}
		album.Items = kept
		return files, nil
	}

	album.Items = kept
	if err := r.store.Save(ctx, album); err != nil {
		return nil, err
	}
	return files, nil
}

// Status reports the processing state of f. The first time the job is seen
// done, the job identifier is replaced with TaskDone and f is saved, so later
// calls do not reach the tracker.
func (r *Repository) Status(ctx context.Context, f *File) (string, error) {
	if f.TaskID != nil && *f.TaskID == TaskDone {
		return StatusDone, nil
	}
	if f.TaskID == nil || *f.TaskID == "" {
		return StatusPending, nil
	}

	jobID := *f.TaskID
	res, err := r.tracker.Result(ctx, jobID)
	if err != nil {
		return "", fmt.Errorf("status of %s: %w", f.Identifier(), err)
	}

	status := statusOf(res)
	if status == StatusDone {
		r.logger.Info("job finished, discarding job identifier", "file", f.Identifier(), "job", jobID)
		done := TaskDone
		f.TaskID = &done
		if err := r.store.Save(ctx, f); err != nil {
			return "", err
		}
	}
	return status, nil
}

func statusOf(res jobs.Result) string {
	if res.State == jobs.StateFailure {
		for _, fs := range failureStatus {
			if strings.Contains(res.Traceback, fs.exception) {
				return fs.status
			}
		}
		return StatusInternalError
	}
	if s, ok := stateStatus[res.State]; ok {
		return s
	}
	return StatusInternalError
}

// AddReport increments the report counter of f. Once the counter is positive
// f is queued for moderation.
func (r *Repository) AddReport(ctx context.Context, f *File) (int64, error) {
	n, err := r.store.AtomicIncrement(ctx, f.Identifier(), "file", "reports", 1)
	if err != nil {
		return 0, err
	}
	f.Reports = n
	if n > 0 {
		if err := r.store.Flag(ctx, f.Identifier()); err != nil {
			return n, err
		}
	}
	return n, nil
}
