package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectline/internal/db"
	"inspectline/internal/domain"
	"inspectline/internal/migrate"
	"inspectline/internal/store"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir(), Name: db.StoreDB})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(conn, migrate.Store))
	s := store.New(conn)
	clock := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
	s.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func draft(desc string) domain.Task {
	return domain.Task{
		Description: desc,
		AssignedTo:  "u-raj",
		DueDate:     "2025-12-12",
		TaskType:    domain.TaskTypeBASet,
		Status:      domain.StatusPending,
		BASets:      []domain.Asset{{ID: "BA-SET-042", AssetID: "BA-SET-042"}},
	}
}

func TestInsertAndListNewestFirst(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	a, err := s.InsertTask(ctx, draft("a"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "2025-12-01T08:00:01Z", a.CreatedAt)
	_, err = s.InsertTask(ctx, draft("b"))
	require.NoError(t, err)

	list, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Description)
	assert.Equal(t, "BA-SET-042", list[1].BASets[0].ID)
}

func TestInsertRejectsUnknownType(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	d := draft("x")
	d.TaskType = "FE"
	_, err := s.InsertTask(context.Background(), d)
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestInsertOnlyAcceptsPending(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	for _, st := range []domain.Status{domain.StatusPendingForApproval, domain.StatusApproved, domain.StatusRejected} {
		d := draft("x")
		d.Status = st
		_, err := s.InsertTask(ctx, d)
		assert.ErrorIs(t, err, store.ErrInvalid, st)
	}
	list, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	d := draft("defaulted")
	d.Status = ""
	created, err := s.InsertTask(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)
}

func TestReplaceKeepsIdentityAndGuardsStatus(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	saved, err := s.InsertTask(ctx, draft("x"))
	require.NoError(t, err)

	next := saved
	next.ID = "spoofed"
	next.CreatedAt = "1999-01-01T00:00:00Z"
	next.Status = domain.StatusPendingForApproval
	next.InspectedBy = "u-raj"
	got, err := s.ReplaceTask(ctx, saved.ID, next)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.CreatedAt, got.CreatedAt)

	stored, err := s.GetTask(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingForApproval, stored.Status)
	assert.Equal(t, "u-raj", stored.InspectedBy)

	stored.Status = domain.StatusPending
	_, err = s.ReplaceTask(ctx, saved.ID, stored)
	var cerr *store.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.StatusPendingForApproval, cerr.From)

	_, err = s.ReplaceTask(ctx, "missing", stored)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	saved, err := s.InsertTask(ctx, draft("x"))
	require.NoError(t, err)
	require.NoError(t, s.DeleteTask(ctx, saved.ID))
	assert.ErrorIs(t, s.DeleteTask(ctx, saved.ID), store.ErrNotFound)
	_, err = s.GetTask(ctx, saved.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

const seedYAML = `
ba_sets:
  - id: BA-SET-042
    name: Drager PSS 3000
    serial_number: SN-1042
    zone: Zone B
    location: Compressor house
safety_kits:
  - id: SK-7
    name: Workshop kit
users:
  - id: u-raj
    name: Raj
    department: Fire & Safety
    role: inspector
  - id: u-sup
    name: Meera
    role: supervisor
`

func TestApplySeed(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	seed, err := store.ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, seed))
	require.NoError(t, s.Apply(ctx, seed), "seeding twice is idempotent")

	ba, err := s.ListAssets(ctx, store.KindBASet)
	require.NoError(t, err)
	require.Len(t, ba, 1)
	assert.Equal(t, "SN-1042", ba[0].SerialNumber)
	assert.Equal(t, "Compressor house", ba[0].Location)

	kits, err := s.ListAssets(ctx, store.KindSafetyKit)
	require.NoError(t, err)
	assert.Len(t, kits, 1)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u-raj", users[0].ID)
	assert.Equal(t, "inspector", users[0].Role)
}
