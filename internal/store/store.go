package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inspectline/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid record")
)

// ConflictError rejects a replacement whose status change is not a lifecycle edge.
type ConflictError struct {
	ID   string
	From domain.Status
	To   domain.Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("task %s cannot move from %s to %s", e.ID, e.From, e.To)
}

// AssetKind names one of the two asset collections.
type AssetKind string

const (
	KindBASet     AssetKind = "baSets"
	KindSafetyKit AssetKind = "safetyKits"
)

// Store persists tasks, assets and users in sqlite. Records are kept as JSON
// documents next to the columns used for ordering and lookups.
type Store struct {
	DB    *sql.DB
	Now   func() time.Time
	NewID func() string
}

func New(conn *sql.DB) Store {
	return Store{DB: conn, Now: time.Now, NewID: uuid.NewString}
}

func (s Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s Store) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

func checkTask(t domain.Task) error {
	if _, err := domain.ParseTaskType(string(t.TaskType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := domain.ParseStatus(string(t.Status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func scanTask(doc string) (domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return t, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

func (s Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT doc_json FROM tasks ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Task{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		t, err := scanTask(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var doc string
	err := s.DB.QueryRowContext(ctx, `SELECT doc_json FROM tasks WHERE id=?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return domain.Task{}, ErrNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	return scanTask(doc)
}

// InsertTask assigns id and createdAt and stores the task. New tasks start
// Pending; an empty status defaults to it.
func (s Store) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if err := checkTask(t); err != nil {
		return domain.Task{}, err
	}
	if t.Status != domain.StatusPending {
		return domain.Task{}, fmt.Errorf("%w: new task must be %s, got %s", ErrInvalid, domain.StatusPending, t.Status)
	}
	t.ID = s.newID()
	t.CreatedAt = s.now().UTC().Format(time.RFC3339Nano)
	doc, err := json.Marshal(t)
	if err != nil {
		return domain.Task{}, err
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO tasks(id,task_type,status,assigned_to,doc_json,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		t.ID, t.TaskType, t.Status, t.AssignedTo, string(doc), t.CreatedAt, t.CreatedAt)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// ReplaceTask overwrites the stored document. id and createdAt always come
// from the stored row. A status change must be a lifecycle edge.
func (s Store) ReplaceTask(ctx context.Context, id string, t domain.Task) (domain.Task, error) {
	if err := checkTask(t); err != nil {
		return domain.Task{}, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc_json FROM tasks WHERE id=?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return domain.Task{}, ErrNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	current, err := scanTask(doc)
	if err != nil {
		return domain.Task{}, err
	}
	if current.Status != t.Status && !domain.CanTransition(current.Status, t.Status) {
		return domain.Task{}, &ConflictError{ID: id, From: current.Status, To: t.Status}
	}
	t.ID = id
	t.CreatedAt = current.CreatedAt
	next, err := json.Marshal(t)
	if err != nil {
		return domain.Task{}, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE tasks SET task_type=?,status=?,assigned_to=?,doc_json=?,updated_at=? WHERE id=?`,
		t.TaskType, t.Status, t.AssignedTo, string(next), s.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return domain.Task{}, err
	}
	return t, tx.Commit()
}

func (s Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s Store) UpsertAsset(ctx context.Context, kind AssetKind, a domain.Asset) error {
	if a.ID == "" {
		return fmt.Errorf("%w: asset id is required", ErrInvalid)
	}
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO assets(id,kind,doc_json) VALUES (?,?,?)
		ON CONFLICT(kind,id) DO UPDATE SET doc_json=excluded.doc_json`, a.ID, string(kind), string(doc))
	return err
}

func (s Store) ListAssets(ctx context.Context, kind AssetKind) ([]domain.Asset, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT doc_json FROM assets WHERE kind=? ORDER BY id`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Asset{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var a domain.Asset
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decode asset: %w", err)
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (s Store) UpsertUser(ctx context.Context, u domain.User) error {
	if u.ID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	doc, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO users(id,role,doc_json) VALUES (?,?,?)
		ON CONFLICT(id) DO UPDATE SET role=excluded.role, doc_json=excluded.doc_json`, u.ID, u.Role, string(doc))
	return err
}

func (s Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT doc_json FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.User{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var u domain.User
		if err := json.Unmarshal([]byte(doc), &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
