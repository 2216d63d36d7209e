package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/storeduty/internal/catalog"
	"github.com/julianstephens/storeduty/internal/constants"
	apperrors "github.com/julianstephens/storeduty/internal/errors"
	"github.com/julianstephens/storeduty/internal/models"
	"github.com/julianstephens/storeduty/internal/storage/memory"
	"github.com/julianstephens/storeduty/internal/validation"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fakeEvidence struct {
	blobs map[string][]byte
	fail  bool
}

func (f *fakeEvidence) Put(_ context.Context, data []byte, filename string) (string, error) {
	if f.fail {
		return "", errors.New("bucket offline")
	}
	ref := fmt.Sprintf("%d-%s", len(f.blobs), filename)
	f.blobs[ref] = data
	return ref, nil
}

func (f *fakeEvidence) Get(_ context.Context, ref string) ([]byte, error) {
	data, ok := f.blobs[ref]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

// brokenStore fails every read of the submission log.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) GetAllSubmissions() ([]models.Submission, error) {
	return nil, errors.New("connection refused")
}

// readOnlyStore refuses every new submission.
type readOnlyStore struct {
	*memory.Store
}

func (readOnlyStore) AppendSubmission(models.Submission) error {
	return errors.New("database is locked")
}

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		Stores: models.NewStoreCatalog([]models.Store{
			{ID: "-", Name: "Select", Placeholder: true},
			{ID: "A", Name: "Store A"},
			{ID: "B", Name: "Store B"},
		}),
		Tasks: models.NewTaskCatalog([]models.Task{
			{ID: "T1", Name: "Grooming", RequiresPhoto: true},
			{ID: "T2", Name: "Sweep"},
			{ID: "T3", Name: "Count"},
		}),
	}
}

func setupTestService(t *testing.T) (*Service, *memory.Store, *fakeEvidence) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	ev := &fakeEvidence{blobs: map[string][]byte{}}
	svc := New(store, ev, testCatalog(), WithClock(func() time.Time { return fixedNow }))
	return svc, store, ev
}

func photo(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func mustSubmit(t *testing.T, svc *Service, req validation.Request) models.Submission {
	t.Helper()
	sub, _, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit(%+v) failed: %v", req, err)
	}
	return sub
}

func TestSubmit_ConfirmedTask(t *testing.T) {
	svc, store, _ := setupTestService(t)

	sub := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: " Alice ", TaskID: "T2", Confirmed: true})
	if sub.Status != constants.StatusSubmitted || sub.Points != 0 {
		t.Errorf("new submissions start submitted/0, got %s/%d", sub.Status, sub.Points)
	}
	if sub.Date != "2024-03-01" || !sub.Timestamp.Equal(fixedNow) {
		t.Errorf("unexpected date/timestamp %s %v", sub.Date, sub.Timestamp)
	}
	if sub.EmployeeName != "Alice" || sub.Evidence != "" {
		t.Errorf("unexpected submission %+v", sub)
	}

	stored, err := store.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("submission not stored: %v", err)
	}
	if stored.EmployeeName != "Alice" {
		t.Errorf("unexpected stored submission %+v", stored)
	}
}

func TestSubmit_RejectionNeverReachesStore(t *testing.T) {
	svc, store, _ := setupTestService(t)

	_, _, err := svc.Submit(context.Background(), validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T1"})
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) || verr.Field != "photo" {
		t.Fatalf("expected photo validation error, got %v", err)
	}

	subs, _ := store.GetAllSubmissions()
	if len(subs) != 0 {
		t.Errorf("rejected submission was stored: %+v", subs)
	}
}

func TestSubmit_UnverifiablePhotoIsStoredWithWarning(t *testing.T) {
	svc, _, ev := setupTestService(t)

	sub, result, err := svc.Submit(context.Background(), validation.Request{
		StoreID: "A", EmployeeName: "Alice", TaskID: "T1", Photo: photo(t), PhotoName: "selfie.jpg",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !result.HasWarnings() {
		t.Error("expected an unverifiable-evidence warning")
	}
	if sub.EvidenceCheck != models.EvidenceUnverifiable {
		t.Errorf("expected unverifiable check, got %q", sub.EvidenceCheck)
	}
	if _, ok := ev.blobs[sub.Evidence]; !ok {
		t.Errorf("evidence %q not stored", sub.Evidence)
	}

	data, err := svc.Evidence(context.Background(), sub.ID)
	if err != nil || len(data) == 0 {
		t.Errorf("Evidence fetch failed: %v", err)
	}
}

func TestSubmit_ReencodedPhotoIsStoredAsJPEG(t *testing.T) {
	svc, _, ev := setupTestService(t)

	sub, _, err := svc.Submit(context.Background(), validation.Request{
		StoreID: "A", EmployeeName: "Alice", TaskID: "T1", Photo: photo(t), PhotoName: "counter.png",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !strings.HasSuffix(sub.Evidence, "counter.jpg") {
		t.Errorf("expected a .jpg evidence name, got %q", sub.Evidence)
	}
	if _, _, err := image.Decode(bytes.NewReader(ev.blobs[sub.Evidence])); err != nil {
		t.Errorf("stored evidence does not decode: %v", err)
	}
}

func TestSubmit_AppendFailureKeepsUploadedEvidence(t *testing.T) {
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	ev := &fakeEvidence{blobs: map[string][]byte{}}
	svc := New(readOnlyStore{store}, ev, testCatalog(), WithClock(func() time.Time { return fixedNow }))

	_, _, err := svc.Submit(context.Background(), validation.Request{
		StoreID: "A", EmployeeName: "Alice", TaskID: "T1", Photo: photo(t), PhotoName: "selfie.jpg",
	})
	if !apperrors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(ev.blobs) != 1 {
		t.Errorf("expected the uploaded blob to remain for cleanup, got %d", len(ev.blobs))
	}
}

func TestSubmit_StrictEvidenceRejects(t *testing.T) {
	svc, store, ev := setupTestService(t)
	settings, _ := store.GetSettings()
	settings.StrictEvidence = true
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	_, _, err := svc.Submit(context.Background(), validation.Request{
		StoreID: "A", EmployeeName: "Alice", TaskID: "T1", Photo: photo(t),
	})
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ev.blobs) != 0 {
		t.Error("rejected evidence must not be uploaded")
	}
}

func TestSubmit_EvidenceStoreFailure(t *testing.T) {
	svc, store, ev := setupTestService(t)
	ev.fail = true

	_, _, err := svc.Submit(context.Background(), validation.Request{
		StoreID: "A", EmployeeName: "Alice", TaskID: "T1", Photo: photo(t),
	})
	if !apperrors.Is(err, apperrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if subs, _ := store.GetAllSubmissions(); len(subs) != 0 {
		t.Error("submission must not be stored when evidence upload fails")
	}
}

func TestBoard_SingleSubmissionScenario(t *testing.T) {
	svc, _, _ := setupTestService(t)
	mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})

	board := svc.TodayBoard(context.Background())
	if board.Degraded {
		t.Fatal("unexpected degraded board")
	}

	row := board.Completion.Stores["A"]
	if row["T1"].Completed || row["T3"].Completed {
		t.Errorf("T1 and T3 must be incomplete: %+v", row)
	}
	if !row["T2"].Completed || len(row["T2"].Completers) != 1 || row["T2"].Completers[0] != "Alice" {
		t.Errorf("unexpected T2 completion: %+v", row["T2"])
	}

	penaltyA := -1
	for _, p := range board.Penalties.Stores {
		if p.StoreID == "A" {
			penaltyA = p.PenaltyPoints
		}
	}
	if penaltyA != 1 {
		t.Errorf("expected store A penalty 1 (T1 excluded), got %d", penaltyA)
	}
	if board.Penalties.Stores[0].StoreID != "B" {
		t.Errorf("store B missed more tasks and should rank first, got %+v", board.Penalties.Stores)
	}
}

func TestReads_DegradeWhenStoreFails(t *testing.T) {
	store := memory.NewStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	svc := New(brokenStore{store}, nil, testCatalog(), WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	board := svc.Board(ctx, "2024-03-01")
	if !board.Degraded || len(board.Completion.Stores) != 0 || len(board.Penalties.Stores) != 0 {
		t.Errorf("expected empty degraded board, got %+v", board)
	}
	history := svc.History(ctx)
	if !history.Degraded || len(history.Days) != 0 || history.Ranking == nil {
		t.Errorf("expected empty degraded history, got %+v", history)
	}
	if sum := svc.Summary(ctx, "2024-03-01"); !sum.Degraded || sum.Reports != 0 {
		t.Errorf("expected degraded summary, got %+v", sum)
	}
	if view := svc.Submissions(ctx, "2024-03-01"); !view.Degraded {
		t.Errorf("expected degraded log, got %+v", view)
	}
}

func TestAudit_AccumulatesAndRecordsTrail(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	sub := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Audit(ctx, sub.ID, models.ActionMajorFault, "manager", ""); err != nil {
			t.Fatalf("Audit failed: %v", err)
		}
	}
	got, _, err := svc.Audit(ctx, sub.ID, models.ActionApprove, "manager", "ok after review")
	if err != nil {
		t.Fatal(err)
	}
	if got.Points != -4 || got.Status != constants.StatusApproved {
		t.Errorf("expected -4/approved, got %d/%s", got.Points, got.Status)
	}

	if _, _, err := svc.Audit(ctx, sub.ID, models.ActionRevokeToZero, "manager", ""); err != nil {
		t.Fatal(err)
	}
	got, _, err = svc.Audit(ctx, sub.ID, models.ActionMinorFault, "manager", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Points != -1 || got.Status != constants.StatusMinorFault {
		t.Errorf("revoke then minor must give -1/minor_fault, got %d/%s", got.Points, got.Status)
	}

	trail, err := svc.Trail(ctx, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trail) != 5 || trail[4].Action != models.ActionMinorFault {
		t.Errorf("unexpected trail: %+v", trail)
	}

	if sum := svc.Summary(ctx, "2024-03-01"); sum.Anomalies != 1 || sum.Reports != 1 || sum.ActiveStores != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestAudit_UnknownSubmission(t *testing.T) {
	svc, store, _ := setupTestService(t)

	_, _, err := svc.Audit(context.Background(), "missing", models.ActionMinorFault, "manager", "")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if all, _ := store.GetAllAdjustments(); len(all) != 0 {
		t.Errorf("no adjustment may be recorded for a missing submission, got %+v", all)
	}
}

func TestReapply_IsIdempotentByID(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	sub := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})

	_, adj, err := svc.Audit(ctx, sub.ID, models.ActionMajorFault, "manager", "")
	if err != nil {
		t.Fatal(err)
	}

	got, applied, err := svc.Reapply(ctx, adj)
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Error("an adjustment already in the trail must not be applied again")
	}
	if got.Points != -2 {
		t.Errorf("expected points to stay -2, got %d", got.Points)
	}

	fresh := adj
	fresh.ID = "replayed-elsewhere"
	got, applied, err = svc.Reapply(ctx, fresh)
	if err != nil || !applied || got.Points != -4 {
		t.Errorf("expected new adjustment to apply, got applied=%v points=%d err=%v", applied, got.Points, err)
	}

	bogus := fresh
	bogus.ID = "bogus"
	bogus.Action = "double_fault"
	if _, _, err := svc.Reapply(ctx, bogus); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for unknown action, got %v", err)
	}
}

func TestReapply_RequiresAdjustmentID(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()
	sub := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})

	for _, action := range []models.Action{models.ActionMajorFault, models.ActionMinorFault} {
		_, applied, err := svc.Reapply(ctx, models.Adjustment{SubmissionID: sub.ID, Action: action})
		var verr *apperrors.ValidationError
		if !apperrors.As(err, &verr) || verr.Field != "id" {
			t.Fatalf("expected a validation error on id for %s, got %v", action, err)
		}
		if applied {
			t.Errorf("%s without an id must not be applied", action)
		}
	}

	trail, err := store.GetAdjustments(sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trail) != 0 {
		t.Errorf("expected an empty trail, got %d adjustments", len(trail))
	}
	got, _ := store.GetSubmission(sub.ID)
	if got.Points != 0 || got.Status != constants.StatusSubmitted {
		t.Errorf("submission must be untouched, got %d/%s", got.Points, got.Status)
	}
}

func TestReapply_RecordsRuleDelta(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()
	sub := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})

	edited := models.Adjustment{
		ID:           "hand-edited",
		SubmissionID: sub.ID,
		Action:       models.ActionMinorFault,
		DeltaPoints:  -5,
		NewStatus:    "whatever",
		CreatedAt:    fixedNow,
	}
	got, applied, err := svc.Reapply(ctx, edited)
	if err != nil || !applied {
		t.Fatalf("expected the adjustment to apply, got applied=%v err=%v", applied, err)
	}
	if got.Points != -1 {
		t.Errorf("expected -1 points, got %d", got.Points)
	}

	trail, err := store.GetAdjustments(sub.ID)
	if err != nil || len(trail) != 1 {
		t.Fatalf("expected one adjustment, got %d (%v)", len(trail), err)
	}
	if trail[0].DeltaPoints != -1 || trail[0].NewStatus != constants.StatusMinorFault {
		t.Errorf("trail must record the rule's delta and status, got %d/%s", trail[0].DeltaPoints, trail[0].NewStatus)
	}
}

func TestSubmissions_NewestFirst(t *testing.T) {
	svc, _, _ := setupTestService(t)
	clock := fixedNow
	svc.now = func() time.Time { return clock }

	first := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})
	clock = clock.Add(time.Hour)
	second := mustSubmit(t, svc, validation.Request{StoreID: "B", EmployeeName: "Bob", TaskID: "T3", Confirmed: true})

	view := svc.Submissions(context.Background(), "2024-03-01")
	if len(view.Submissions) != 2 || view.Submissions[0].ID != second.ID || view.Submissions[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", view.Submissions)
	}
}

func TestEvidence_MissingAttachment(t *testing.T) {
	svc, _, _ := setupTestService(t)
	sub := mustSubmit(t, svc, validation.Request{StoreID: "A", EmployeeName: "Alice", TaskID: "T2", Confirmed: true})

	if _, err := svc.Evidence(context.Background(), sub.ID); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a submission without evidence, got %v", err)
	}
}

func TestImportSubmissions_SkipsKnownIDs(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()
	legacy := []models.Submission{
		{ID: "legacy-1", Date: "2024-02-28", StoreID: "A", EmployeeName: "E001", TaskID: "T2", Status: constants.StatusSubmitted},
		{ID: "legacy-2", Date: "2024-02-28", StoreID: "B", EmployeeName: "E002", TaskID: "T3", Status: constants.StatusMajorFault, Points: -5},
	}

	res, err := svc.importSubmissions(ctx, legacy)
	if err != nil || res.Added != 2 || res.Skipped != 0 {
		t.Fatalf("first import: %+v, %v", res, err)
	}
	res, err = svc.importSubmissions(ctx, legacy)
	if err != nil || res.Added != 0 || res.Skipped != 2 {
		t.Fatalf("second import: %+v, %v", res, err)
	}

	subs, _ := store.GetAllSubmissions()
	if len(subs) != 2 {
		t.Errorf("expected 2 stored submissions, got %d", len(subs))
	}
	history := svc.History(ctx)
	if len(history.Days) != 2 || history.Days[0].Date != "2024-02-28" {
		t.Errorf("imported rows should appear in history, got %+v", history.Days)
	}
}
