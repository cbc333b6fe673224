package engine

import (
	"context"
	"log/slog"
	"time"

	"inspectline/internal/catalog"
	"inspectline/internal/config"
	"inspectline/internal/domain"
	"inspectline/internal/events"
	"inspectline/internal/logging"
	"inspectline/internal/repo"
	"inspectline/internal/session"
)

// Engine runs the inspection workflow. Every mutation goes through Tasks,
// which holds the only copy of the task collection.
type Engine struct {
	Tasks   *repo.Tasks
	Assets  *catalog.Assets
	Session *session.Session
	Events  events.Writer
	Logger  *slog.Logger
	Now     func() time.Time

	// TimestampLayout formats submittedAt, approvedAt and rejectedAt.
	TimestampLayout  string
	// GuardTransitions re-checks the cached status before submitting or deciding.
	GuardTransitions bool
}

func New(tasks *repo.Tasks, assets *catalog.Assets, sess *session.Session, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		Tasks:            tasks,
		Assets:           assets,
		Session:          sess,
		Logger:           logging.Discard(),
		Now:              time.Now,
		TimestampLayout:  cfg.Workflow.TimestampLayout,
		GuardTransitions: cfg.Workflow.GuardTransitions,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) timestamp() string {
	layout := e.TimestampLayout
	if layout == "" {
		layout = time.RFC3339
	}
	return e.now().Format(layout)
}

func (e Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

// actorID is best effort: journal entries for anonymous callers carry no actor.
func (e Engine) actorID() string {
	id, err := e.Session.UserID()
	if err != nil {
		return ""
	}
	return id
}

// record appends to the journal. The remote store already holds the change,
// so a journal failure is logged and swallowed.
func (e Engine) record(ctx context.Context, evtType, taskID string, payload events.EventPayload) {
	if err := e.Events.Append(ctx, evtType, taskID, e.actorID(), payload); err != nil {
		e.logger().Warn("journal append failed", "type", evtType, "task_id", taskID, "error", err)
	}
}

func (e Engine) ensureTransition(t domain.Task, to domain.Status) error {
	if !e.GuardTransitions {
		return nil
	}
	if !domain.CanTransition(t.Status, to) {
		return &TransitionError{TaskID: t.ID, From: t.Status, To: to}
	}
	return nil
}

// List returns the cached tasks, newest first.
func (e Engine) List(ctx context.Context) ([]domain.Task, error) {
	return e.Tasks.List(ctx)
}

// Refresh refetches tasks and assets from the remote side.
func (e Engine) Refresh(ctx context.Context) error {
	if err := e.Tasks.Refresh(ctx); err != nil {
		return err
	}
	if e.Assets != nil {
		return e.Assets.Refresh(ctx)
	}
	return nil
}

// DeleteTask removes a task on explicit operator request.
func (e Engine) DeleteTask(ctx context.Context, id string) error {
	t, err := e.Tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.Tasks.Delete(ctx, id); err != nil {
		return err
	}
	e.record(ctx, events.TaskDeleted, id, events.EventPayload{"status": t.Status})
	return nil
}

func ptr[T any](v T) *T { return &v }
