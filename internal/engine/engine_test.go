package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectline/internal/catalog"
	"inspectline/internal/db"
	"inspectline/internal/domain"
	"inspectline/internal/engine"
	"inspectline/internal/events"
	"inspectline/internal/migrate"
	"inspectline/internal/repo"
	"inspectline/internal/session"
	"inspectline/internal/testsupport"
)

type testEnv struct {
	Engine engine.Engine
	Remote *testsupport.FakeRemote
	Ctx    context.Context
}

var testNow = time.Date(2025, 12, 10, 14, 30, 5, 0, time.UTC)

func newTestEnv(t *testing.T, seed ...domain.Task) testEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir(), Name: db.JournalDB})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(conn, migrate.Journal))

	remote := testsupport.NewFakeRemote().
		WithAssets(testsupport.BASets(), testsupport.SafetyKits()).
		WithUsers(testsupport.Supervisor, testsupport.Raj, testsupport.Anita).
		Seed(seed...)
	cfg := testsupport.NewConfig(t)
	eng := engine.New(repo.New(remote, nil), catalog.NewAssets(remote), session.New(testsupport.Supervisor), cfg)
	eng.Now = testsupport.FixedClock(testNow)
	eng.Events = events.Writer{DB: conn, Now: eng.Now}
	return testEnv{Engine: eng, Remote: remote, Ctx: context.Background()}
}

func (env testEnv) signIn(u domain.User) {
	env.Engine.Session.SignIn(u)
}

func (env testEnv) journal(t *testing.T, evtType string) []events.Event {
	t.Helper()
	evts, err := env.Engine.Events.Latest(env.Ctx, 0, evtType, "")
	require.NoError(t, err)
	return evts
}

func baRequest(assetIDs ...string) engine.AssignmentRequest {
	raj := testsupport.Raj
	return engine.AssignmentRequest{
		Description: "Monthly BA check",
		Inspector:   &raj,
		DueDate:     "2025-12-12",
		TaskType:    domain.TaskTypeBASet,
		AssetIDs:    assetIDs,
	}
}

func baInspection(overrides map[string]domain.CheckResult) domain.InspectionData {
	return domain.InspectionData{
		Readings:  &domain.BAReadings{CylinderPressure: "300", GaugePressure: "295", FlowRate: "40"},
		Checklist: testsupport.FullChecklist(overrides),
		Location:  json.RawMessage(`{"lat":25.2,"lng":55.3}`),
	}
}

func TestAssignFansOutOneTaskPerAsset(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-041", "BA-SET-042", "BA-SET-043"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Count())

	seen := map[string]bool{}
	for _, task := range res.Tasks {
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, "Monthly BA check", task.Description)
		assert.Equal(t, "u-raj", task.AssignedTo)
		assert.Equal(t, "Raj", task.AssignedToName)
		assert.Equal(t, "Fire & Safety", task.AssignedToDept)
		assert.Equal(t, "2025-12-12", task.DueDate)
		assert.Equal(t, domain.StatusPending, task.Status)
		require.Len(t, task.BASets, 1)
		assert.Empty(t, task.SafetyKits)
		assert.Equal(t, task.BASets[0].ID, task.BASets[0].AssetID)
		seen[task.BASets[0].ID] = true
	}
	assert.Len(t, seen, 3)

	cached := env.Engine.Tasks.Snapshot()
	require.Len(t, cached, 3)
	assert.Equal(t, res.Tasks[2].ID, cached[0].ID, "newest task first")
	assert.Len(t, env.journal(t, events.TaskAssigned), 3)
}

func TestAssignCopiesCatalogSnapshot(t *testing.T) {
	env := newTestEnv(t)
	anita := testsupport.Anita
	res, err := env.Engine.Assign(env.Ctx, engine.AssignmentRequest{
		Description: "Kit audit",
		Inspector:   &anita,
		DueDate:     "2025-12-20",
		TaskType:    domain.TaskTypeSafetyKit,
		AssetIDs:    []string{"SK-9"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count())
	task := res.Tasks[0]
	require.Len(t, task.SafetyKits, 1)
	assert.Empty(t, task.BASets)
	assert.Equal(t, "Lab kit", task.SafetyKits[0].Name)
	assert.Equal(t, "Laboratory", task.SafetyKits[0].Location)
	assert.Equal(t, "SK-9", task.SafetyKits[0].AssetID)
}

func TestAssignValidationHappensBeforeNetwork(t *testing.T) {
	raj := testsupport.Raj
	cases := []struct {
		name string
		req  engine.AssignmentRequest
		want error
		code string
	}{
		{name: "blank description", req: engine.AssignmentRequest{Description: "   ", Inspector: &raj, DueDate: "2025-12-12", TaskType: domain.TaskTypeBASet, AssetIDs: []string{"BA-SET-041"}}, want: engine.ErrEmptyDescription},
		{name: "no inspector", req: engine.AssignmentRequest{Description: "x", DueDate: "2025-12-12", TaskType: domain.TaskTypeBASet, AssetIDs: []string{"BA-SET-041"}}, want: engine.ErrNoInspectorSelected},
		{name: "no due date", req: engine.AssignmentRequest{Description: "x", Inspector: &raj, TaskType: domain.TaskTypeBASet, AssetIDs: []string{"BA-SET-041"}}, want: engine.ErrNoDueDate},
		{name: "no assets", req: engine.AssignmentRequest{Description: "x", Inspector: &raj, DueDate: "2025-12-12", TaskType: domain.TaskTypeBASet}, want: engine.ErrNoAssetsSelected},
		{name: "bad task type", req: engine.AssignmentRequest{Description: "x", Inspector: &raj, DueDate: "2025-12-12", TaskType: "FE", AssetIDs: []string{"BA-SET-041"}}, code: "invalid_task_type"},
		{name: "duplicate asset", req: baRequest("BA-SET-041", "BA-SET-041"), code: "duplicate_asset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.Engine.Assign(env.Ctx, tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, engine.ErrValidation)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
			if tc.code != "" {
				var verr *engine.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.code, verr.Code)
			}
			assert.Zero(t, env.Remote.CallCount("create"))
			assert.Zero(t, env.Remote.CallCount("baSets"))
		})
	}
}

func TestAssignUnknownAssetCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-041", "BA-SET-999"))
	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unknown_asset", verr.Code)
	assert.Zero(t, env.Remote.CallCount("create"))
	assert.Empty(t, env.Remote.Stored())
}

func TestAssignPartialFailureKeepsCreatedTasks(t *testing.T) {
	env := newTestEnv(t)
	env.Remote.FailCreateAfter = 2

	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-041", "BA-SET-042", "BA-SET-043"))
	var perr *engine.PartialAssignmentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Created)
	assert.Equal(t, 3, perr.Total)
	assert.Equal(t, "BA-SET-043", perr.AssetID)
	assert.ErrorIs(t, err, testsupport.ErrInjected)

	var werr *repo.RemoteWriteError
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, 2, res.Count())
	assert.Len(t, env.Remote.Stored(), 2)
	assert.Len(t, env.Engine.Tasks.Snapshot(), 2)
}

func TestEditAssignmentUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-041"))
	require.NoError(t, err)
	existing := res.Tasks[0]

	anita := testsupport.Anita
	edit := engine.AssignmentRequest{
		Description: "Monthly BA check (moved)",
		Inspector:   &anita,
		DueDate:     "2025-12-15",
		TaskType:    domain.TaskTypeBASet,
		AssetIDs:    []string{"BA-SET-042"},
		Existing:    &existing,
	}
	out, err := env.Engine.Assign(env.Ctx, edit)
	require.NoError(t, err)
	require.Equal(t, 1, out.Count())
	got := out.Tasks[0]
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, "u-anita", got.AssignedTo)
	assert.Equal(t, "2025-12-15", got.DueDate)
	require.Len(t, got.BASets, 1)
	assert.Equal(t, "BA-SET-042", got.BASets[0].ID)
	assert.Equal(t, 1, env.Remote.CallCount("create"))
	assert.Len(t, env.Remote.Stored(), 1)
	assert.Len(t, env.journal(t, events.TaskUpdated), 1)

	edit.AssetIDs = []string{"BA-SET-041", "BA-SET-043"}
	_, err = env.Engine.Assign(env.Ctx, edit)
	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "edit_single_asset", verr.Code)
}

func TestEditAssignmentLoadsColdCache(t *testing.T) {
	seeded := domain.Task{
		Description: "Monthly BA check",
		AssignedTo:  "u-raj",
		DueDate:     "2025-12-12",
		TaskType:    domain.TaskTypeBASet,
		Status:      domain.StatusPending,
		BASets:      []domain.Asset{{ID: "BA-SET-041", AssetID: "BA-SET-041"}},
	}
	env := newTestEnv(t, seeded)
	require.False(t, env.Engine.Tasks.Loaded())
	existing := env.Remote.Stored()[0]

	anita := testsupport.Anita
	out, err := env.Engine.Assign(env.Ctx, engine.AssignmentRequest{
		Description: "Monthly BA check",
		Inspector:   &anita,
		DueDate:     "2025-12-15",
		TaskType:    domain.TaskTypeBASet,
		AssetIDs:    []string{"BA-SET-041"},
		Existing:    &existing,
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, out.Tasks[0].ID)
	assert.Equal(t, "u-anita", out.Tasks[0].AssignedTo)
	assert.Equal(t, 1, env.Remote.CallCount("list"))
	assert.Equal(t, 1, env.Remote.CallCount("replace"))
	assert.Equal(t, "u-anita", env.Remote.Stored()[0].AssignedTo)
}

func TestSubmitBASetMovesToPendingForApproval(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-042"))
	require.NoError(t, err)

	env.signIn(testsupport.Raj)
	got, err := env.Engine.SubmitInspection(env.Ctx, res.Tasks[0].ID, baInspection(nil))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingForApproval, got.Status)
	assert.Equal(t, "u-raj", got.InspectedBy)
	assert.Equal(t, "12/10/2025, 2:30:05 PM", got.SubmittedAt)
	require.NotNil(t, got.InspectionData)
	assert.JSONEq(t, `{"lat":25.2,"lng":55.3}`, string(got.InspectionData.Location))
	require.NoError(t, got.CheckInvariants())
}

func TestSubmitIncompleteChecklistLeavesTaskPending(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-042"))
	require.NoError(t, err)
	data := baInspection(nil)
	delete(data.Checklist, "harness")
	delete(data.Checklist, "warningWhistle")

	env.signIn(testsupport.Raj)
	_, err = env.Engine.SubmitInspection(env.Ctx, res.Tasks[0].ID, data)
	var cerr *engine.IncompleteChecklistError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"harness", "warningWhistle"}, cerr.Missing)
	assert.ErrorIs(t, err, engine.ErrValidation)
	assert.Zero(t, env.Remote.CallCount("replace"))

	task, err := env.Engine.Tasks.Get(env.Ctx, res.Tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, task.Status)
}

func TestSubmitRejectsInvalidChecklistValue(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-042"))
	require.NoError(t, err)
	env.signIn(testsupport.Raj)
	_, err = env.Engine.SubmitInspection(env.Ctx, res.Tasks[0].ID, baInspection(map[string]domain.CheckResult{"faceMask": "MAYBE"}))
	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_checklist_value", verr.Code)
}

func TestSubmitSafetyKitHasNoRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	anita := testsupport.Anita
	res, err := env.Engine.Assign(env.Ctx, engine.AssignmentRequest{
		Description: "Kit audit", Inspector: &anita, DueDate: "2025-12-20",
		TaskType: domain.TaskTypeSafetyKit, AssetIDs: []string{"SK-7"},
	})
	require.NoError(t, err)

	env.signIn(testsupport.Anita)
	got, err := env.Engine.SubmitInspection(env.Ctx, res.Tasks[0].ID, domain.InspectionData{Materials: domain.NewSafetyKitForm()})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingForApproval, got.Status)
	assert.Len(t, got.InspectionData.Materials, len(domain.SafetyKitMaterials))

	_, err = env.Engine.Approve(env.Ctx, got.ID)
	require.NoError(t, err)
}

func TestSubmitRequiresSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-042"))
	require.NoError(t, err)
	env.Engine.Session.SignOut()
	_, err = env.Engine.SubmitInspection(env.Ctx, res.Tasks[0].ID, baInspection(nil))
	assert.ErrorIs(t, err, session.ErrNoUser)
}

func TestSubmitUnknownTaskIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(testsupport.Raj)
	_, err := env.Engine.SubmitInspection(env.Ctx, "missing", baInspection(nil))
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRejectWithoutReasonMakesNoCall(t *testing.T) {
	env := newTestEnv(t, domain.Task{
		ID: "t-1", Description: "x", AssignedTo: "u-raj", DueDate: "2025-12-12",
		TaskType: domain.TaskTypeBASet, Status: domain.StatusPendingForApproval,
		SubmittedAt: "12/9/2025, 9:00:00 AM", InspectedBy: "u-raj",
	})
	_, err := env.Engine.Reject(env.Ctx, "t-1", "  ")
	assert.ErrorIs(t, err, engine.ErrMissingRejectionReason)
	assert.Zero(t, env.Remote.CallCount("list"))
	assert.Zero(t, env.Remote.CallCount("replace"))
}

func TestTransitionGuard(t *testing.T) {
	env := newTestEnv(t, domain.Task{
		ID: "t-1", Description: "x", AssignedTo: "u-raj", DueDate: "2025-12-12",
		TaskType: domain.TaskTypeBASet, Status: domain.StatusPending,
	})
	_, err := env.Engine.Approve(env.Ctx, "t-1")
	var terr *engine.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.StatusPending, terr.From)
	assert.Equal(t, domain.StatusApproved, terr.To)
	assert.Zero(t, env.Remote.CallCount("replace"))

	env.Engine.GuardTransitions = false
	got, err := env.Engine.Approve(env.Ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
}

func TestApprovedTaskCannotBeResubmitted(t *testing.T) {
	env := newTestEnv(t, domain.Task{
		ID: "t-1", Description: "x", AssignedTo: "u-raj", DueDate: "2025-12-12",
		TaskType: domain.TaskTypeBASet, Status: domain.StatusApproved, ApprovedAt: "12/9/2025, 9:00:00 AM",
	})
	env.signIn(testsupport.Raj)
	_, err := env.Engine.SubmitInspection(env.Ctx, "t-1", baInspection(nil))
	var terr *engine.TransitionError
	require.ErrorAs(t, err, &terr)
}

func TestUpdateFailureKeepsCachedStatus(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-042"))
	require.NoError(t, err)
	env.Remote.FailReplace = true

	env.signIn(testsupport.Raj)
	_, err = env.Engine.SubmitInspection(env.Ctx, res.Tasks[0].ID, baInspection(nil))
	var werr *repo.RemoteWriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "update", werr.Op)

	task, err := env.Engine.Tasks.Get(env.Ctx, res.Tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Empty(t, env.journal(t, events.TaskSubmitted))
}

func TestRejectThenResubmitThenApprove(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-042"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Count())
	id := res.Tasks[0].ID

	env.signIn(testsupport.Raj)
	task, err := env.Engine.SubmitInspection(env.Ctx, id, baInspection(map[string]domain.CheckResult{"harness": domain.CheckNotOK}))
	require.NoError(t, err)
	view := domain.NewReviewView(task)
	assert.True(t, view.Decidable)
	assert.Equal(t, []string{"harness"}, view.DefectiveItems)

	env.signIn(testsupport.Supervisor)
	task, err = env.Engine.Reject(env.Ctx, id, "Harness worn")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, task.Status)
	assert.Equal(t, "Harness worn", task.RejectionReason)
	assert.NotEmpty(t, task.RejectedAt)
	assert.Empty(t, task.ApprovedAt)
	require.NoError(t, task.CheckInvariants())

	inbox := repo.InspectorInbox(env.Engine.Tasks.Snapshot(), "u-raj")
	require.Len(t, inbox, 1)
	assert.Equal(t, id, inbox[0].ID)

	env.signIn(testsupport.Raj)
	task, err = env.Engine.SubmitInspection(env.Ctx, id, baInspection(nil))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingForApproval, task.Status)
	assert.Equal(t, "Harness worn", task.RejectionReason, "reason kept as history")
	assert.NotEmpty(t, task.RejectedAt)

	env.signIn(testsupport.Supervisor)
	task, err = env.Engine.Approve(env.Ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, task.Status)
	assert.Equal(t, "12/10/2025, 2:30:05 PM", task.ApprovedAt)
	assert.True(t, task.Status.IsTerminal())
	require.NoError(t, task.CheckInvariants())

	_, err = env.Engine.Reject(env.Ctx, id, "too late")
	var terr *engine.TransitionError
	assert.ErrorAs(t, err, &terr)

	evts, err := env.Engine.Events.Latest(env.Ctx, 0, "", id)
	require.NoError(t, err)
	var types []string
	for _, e := range evts {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		events.TaskApproved,
		events.TaskSubmitted,
		events.TaskRejected,
		events.TaskSubmitted,
		events.TaskAssigned,
	}, types)
	assert.Equal(t, "u-sup", evts[0].ActorID)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.Engine.Assign(env.Ctx, baRequest("BA-SET-041"))
	require.NoError(t, err)
	require.NoError(t, env.Engine.DeleteTask(env.Ctx, res.Tasks[0].ID))
	assert.Empty(t, env.Engine.Tasks.Snapshot())
	assert.Empty(t, env.Remote.Stored())
	assert.Len(t, env.journal(t, events.TaskDeleted), 1)

	err = env.Engine.DeleteTask(env.Ctx, res.Tasks[0].ID)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
}

func TestParseDecision(t *testing.T) {
	d, err := engine.ParseDecision("APPROVE")
	require.NoError(t, err)
	assert.Equal(t, engine.DecisionApprove, d)
	d, err = engine.ParseDecision("reject")
	require.NoError(t, err)
	assert.Equal(t, engine.DecisionReject, d)
	_, err = engine.ParseDecision("maybe")
	assert.ErrorIs(t, err, engine.ErrValidation)
}
