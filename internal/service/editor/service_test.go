package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vecteditor/internal/config"
	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models/svgdoc"
	svgdocRepo "vecteditor/internal/domain/repositories/svgdoc"
	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
	"vecteditor/internal/repository/memory"
	"vecteditor/internal/sourceview"
)

const docID = "doc-1"

type testEnv struct {
	svc      svgdocSvc.EditorService
	store    *memory.Store
	notifier *memory.Notifier
}

func testConfig() *config.Config {
	return &config.Config{
		MaxGroupDepth:         3,
		MaxObjectsPerDocument: 20,
		HistoryLimit:          50,
		Debug:                 true,
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	store := memory.NewStore()
	notifier := memory.NewNotifier()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store.Snapshots(), store.Moves(), store, notifier, cfg, logger)
	return &testEnv{svc: svc, store: store, notifier: notifier}
}

// exampleTree is root[c1, g1[r1, c2], p1]
func exampleTree() *svgdoc.Tree {
	return &svgdoc.Tree{Children: []*svgdoc.Object{
		{Type: svgdoc.KindCircle, ID: "c1"},
		{Type: svgdoc.KindGroup, ID: "g1", Children: []*svgdoc.Object{
			{Type: svgdoc.KindRectangle, ID: "r1"},
			{Type: svgdoc.KindCircle, ID: "c2"},
		}},
		{Type: svgdoc.KindPath, ID: "p1"},
	}}
}

// seeded returns an env whose document holds exampleTree at revision 1
func seeded(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, testConfig())
	if _, err := env.svc.ReplaceTree(context.Background(), docID, "seed", exampleTree()); err != nil {
		t.Fatalf("ReplaceTree() error = %v", err)
	}
	return env
}

func sourceIDs(t *testing.T, svc svgdocSvc.EditorService) []string {
	t.Helper()
	view, err := svc.GetSourceView(context.Background(), docID)
	if err != nil {
		t.Fatalf("GetSourceView() error = %v", err)
	}
	ids := make([]string, len(view.Entries))
	for i, e := range view.Entries {
		ids[i] = e.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func rev(n int64) *int64 { return &n }

func TestMoveObject(t *testing.T) {
	tests := []struct {
		name       string
		activeID   string
		overID     string
		revision   *int64
		wantPlan   *sourceview.Plan
		wantSource []string
		wantReason string
	}{
		{
			name:       "leaf into a group below",
			activeID:   "c1",
			overID:     "c2",
			wantPlan:   &sourceview.Plan{ObjectID: "c1", Container: "g1", Index: 1},
			wantSource: []string{"g1", "r1", "c1", "c2", "END_g1", "p1"},
		},
		{
			name:       "group after a sibling",
			activeID:   "g1",
			overID:     "p1",
			revision:   rev(1),
			wantPlan:   &sourceview.Plan{ObjectID: "g1", Container: sourceview.Root, Index: 2},
			wantSource: []string{"c1", "p1", "g1", "r1", "c2", "END_g1"},
		},
		{
			name:       "leaf out of a group upwards",
			activeID:   "c2",
			overID:     "c1",
			wantPlan:   &sourceview.Plan{ObjectID: "c2", Container: sourceview.Root, Index: 0},
			wantSource: []string{"c2", "c1", "g1", "r1", "END_g1", "p1"},
		},
		{
			name:       "dragging the closing tag drags the group",
			activeID:   "END_g1",
			overID:     "c1",
			wantPlan:   &sourceview.Plan{ObjectID: "g1", Container: sourceview.Root, Index: 0},
			wantSource: []string{"g1", "r1", "c2", "END_g1", "c1", "p1"},
		},
		{
			name:       "stale revision",
			activeID:   "c1",
			overID:     "c2",
			revision:   rev(0),
			wantReason: ReasonStaleRevision,
			wantSource: []string{"c1", "g1", "r1", "c2", "END_g1", "p1"},
		},
		{
			name:       "active vanished",
			activeID:   "gone",
			overID:     "c2",
			wantReason: ReasonVanished,
			wantSource: []string{"c1", "g1", "r1", "c2", "END_g1", "p1"},
		},
		{
			name:       "dropped on itself",
			activeID:   "c1",
			overID:     "c1",
			wantPlan:   &sourceview.Plan{ObjectID: "c1", Container: sourceview.Root, Index: 0},
			wantReason: ReasonUnchanged,
			wantSource: []string{"c1", "g1", "r1", "c2", "END_g1", "p1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := seeded(t)
			res, err := env.svc.MoveObject(context.Background(), &svgdocSvc.MoveObjectRequest{
				DocumentID: docID,
				PeerID:     "peer-a",
				ActiveID:   tt.activeID,
				OverID:     tt.overID,
				Revision:   tt.revision,
			})
			if err != nil {
				t.Fatalf("MoveObject() error = %v", err)
			}

			wantApplied := tt.wantReason == ""
			if res.Applied != wantApplied {
				t.Errorf("Applied = %v, want %v", res.Applied, wantApplied)
			}
			if res.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
			if tt.wantPlan != nil && (res.Plan == nil || *res.Plan != *tt.wantPlan) {
				t.Errorf("Plan = %+v, want %+v", res.Plan, tt.wantPlan)
			}
			wantRevision := int64(1)
			if wantApplied {
				wantRevision = 2
			}
			if res.Revision != wantRevision {
				t.Errorf("Revision = %d, want %d", res.Revision, wantRevision)
			}
			if got := sourceIDs(t, env.svc); !equalIDs(got, tt.wantSource) {
				t.Errorf("source = %v, want %v", got, tt.wantSource)
			}
		})
	}
}

func TestMoveObject_DropIntoSelf(t *testing.T) {
	env := seeded(t)
	_, err := env.svc.MoveObject(context.Background(), &svgdocSvc.MoveObjectRequest{
		DocumentID: docID,
		ActiveID:   "g1",
		OverID:     "r1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestMoveObject_InvalidRequest(t *testing.T) {
	env := seeded(t)
	tests := []struct {
		name string
		req  *svgdocSvc.MoveObjectRequest
	}{
		{name: "missing active", req: &svgdocSvc.MoveObjectRequest{DocumentID: docID, OverID: "c1"}},
		{name: "missing over", req: &svgdocSvc.MoveObjectRequest{DocumentID: docID, ActiveID: "c1"}},
		{name: "negative revision", req: &svgdocSvc.MoveObjectRequest{DocumentID: docID, ActiveID: "c1", OverID: "p1", Revision: rev(-1)}},
		{name: "missing document", req: &svgdocSvc.MoveObjectRequest{ActiveID: "c1", OverID: "p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.MoveObject(context.Background(), tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestMoveObject_PersistsAndNotifies(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	events, cancel, _ := env.notifier.Subscribe(ctx, docID)
	defer cancel()

	if _, err := env.svc.MoveObject(ctx, &svgdocSvc.MoveObjectRequest{
		DocumentID: docID,
		PeerID:     "peer-a",
		ActiveID:   "c1",
		OverID:     "c2",
	}); err != nil {
		t.Fatalf("MoveObject() error = %v", err)
	}

	snap, err := env.store.Snapshots().Get(ctx, docID)
	if err != nil {
		t.Fatalf("snapshot Get() error = %v", err)
	}
	if snap.Revision != 2 {
		t.Errorf("snapshot revision = %d, want 2", snap.Revision)
	}

	history, err := env.svc.History(ctx, docID, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("History() returned %d records, want 1", len(history))
	}
	got := history[0]
	if got.ObjectID != "c1" || got.FromContainer != sourceview.Root || got.FromIndex != 0 ||
		got.ToContainer != "g1" || got.ToIndex != 1 || got.PeerID != "peer-a" || got.Revision != 2 {
		t.Errorf("move record = %+v", got)
	}

	select {
	case ev := <-events:
		want := svgdocSvc.ChangeEvent{DocumentID: docID, Revision: 2, PeerID: "peer-a", Action: svgdocSvc.ActionMove, ObjectID: "c1"}
		if ev != want {
			t.Errorf("event = %+v, want %+v", ev, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no change event published")
	}
}

// failingSnapshots accepts reads and rejects every write
type failingSnapshots struct {
	svgdocRepo.SnapshotRepository
}

func (failingSnapshots) Save(context.Context, *svgdoc.Snapshot) error {
	return errors.New("disk full")
}

func TestMoveObject_RestoresEngineWhenPersistFails(t *testing.T) {
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	seed := NewService(store.Snapshots(), store.Moves(), store, nil, testConfig(), logger)
	if _, err := seed.ReplaceTree(ctx, docID, "seed", exampleTree()); err != nil {
		t.Fatalf("ReplaceTree() error = %v", err)
	}

	svc := NewService(failingSnapshots{store.Snapshots()}, store.Moves(), store, nil, testConfig(), logger)
	_, err := svc.MoveObject(ctx, &svgdocSvc.MoveObjectRequest{DocumentID: docID, ActiveID: "c1", OverID: "c2"})
	if err == nil {
		t.Fatal("MoveObject() succeeded, want persist error")
	}

	want := []string{"c1", "g1", "r1", "c2", "END_g1", "p1"}
	if got := sourceIDs(t, svc); !equalIDs(got, want) {
		t.Errorf("source = %v, want %v", got, want)
	}
	view, _ := svc.GetSourceView(ctx, docID)
	if view.Revision != 1 {
		t.Errorf("revision = %d, want 1", view.Revision)
	}
}

func TestSession_LoadsStoredSnapshot(t *testing.T) {
	env := seeded(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A second service instance reopens the document from the store
	other := NewService(env.store.Snapshots(), env.store.Moves(), env.store, nil, testConfig(), logger)
	view, err := other.GetSourceView(context.Background(), docID)
	if err != nil {
		t.Fatalf("GetSourceView() error = %v", err)
	}
	if view.Revision != 1 || len(view.Entries) != 6 {
		t.Errorf("view = revision %d with %d entries, want revision 1 with 6", view.Revision, len(view.Entries))
	}

	empty, err := other.GetSourceView(context.Background(), "new-doc")
	if err != nil {
		t.Fatalf("GetSourceView(new) error = %v", err)
	}
	if empty.Revision != 0 || len(empty.Entries) != 0 {
		t.Errorf("new document view = %+v, want empty at revision 0", empty)
	}
}

func TestService_SharedStoreRejectsLostUpdate(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := env.svc
	b := NewService(env.store.Snapshots(), env.store.Moves(), env.store, nil, testConfig(), logger)

	// Both instances open the document at revision 1
	sourceIDs(t, a)
	sourceIDs(t, b)

	if err := a.DeleteObject(ctx, docID, "peer-a", "p1"); err != nil {
		t.Fatalf("A DeleteObject() error = %v", err)
	}

	err := b.DeleteObject(ctx, docID, "peer-b", "c1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("B DeleteObject() on a stale session error = %v, want ErrConflict", err)
	}

	snap, err := env.store.Snapshots().Get(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Revision != 2 {
		t.Errorf("stored revision = %d, want 2", snap.Revision)
	}

	// B reloads the stored document: A's delete is visible, c1 is still there
	if got, want := sourceIDs(t, b), []string{"c1", "g1", "r1", "c2", "END_g1"}; !equalIDs(got, want) {
		t.Errorf("B source after conflict = %v, want %v", got, want)
	}

	if err := b.DeleteObject(ctx, docID, "peer-b", "c1"); err != nil {
		t.Fatalf("B retry DeleteObject() error = %v", err)
	}
	view, _ := b.GetSourceView(ctx, docID)
	if view.Revision != 3 {
		t.Errorf("revision after retry = %d, want 3", view.Revision)
	}
	if got, want := sourceIDs(t, b), []string{"g1", "r1", "c2", "END_g1"}; !equalIDs(got, want) {
		t.Errorf("B source after retry = %v, want %v", got, want)
	}
}

// failingMoves rejects every move record
type failingMoves struct {
	svgdocRepo.MoveLogRepository
}

func (failingMoves) Append(context.Context, *svgdoc.MoveRecord) error {
	return errors.New("log unavailable")
}

func TestMoveObject_FailedLogLeavesSnapshotUntouched(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(env.store.Snapshots(), failingMoves{env.store.Moves()}, env.store, nil, testConfig(), logger)
	if _, err := svc.MoveObject(ctx, &svgdocSvc.MoveObjectRequest{DocumentID: docID, ActiveID: "c1", OverID: "c2"}); err == nil {
		t.Fatal("MoveObject() succeeded, want move log error")
	}

	snap, err := env.store.Snapshots().Get(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Revision != 1 {
		t.Errorf("stored revision = %d, want 1 after the failed transaction", snap.Revision)
	}
	if got, want := sourceIDs(t, svc), []string{"c1", "g1", "r1", "c2", "END_g1", "p1"}; !equalIDs(got, want) {
		t.Errorf("source = %v, want %v", got, want)
	}
}

// gatedSnapshots counts reads and holds reads of one document until released
type gatedSnapshots struct {
	svgdocRepo.SnapshotRepository
	slowID  string
	entered chan struct{}
	release chan struct{}
	reads   atomic.Int32
}

func (g *gatedSnapshots) Get(ctx context.Context, documentID string) (*svgdoc.Snapshot, error) {
	g.reads.Add(1)
	if documentID == g.slowID {
		close(g.entered)
		<-g.release
	}
	return g.SnapshotRepository.Get(ctx, documentID)
}

func TestSession_SlowLoadDoesNotBlockOtherDocuments(t *testing.T) {
	env := seeded(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gated := &gatedSnapshots{
		SnapshotRepository: env.store.Snapshots(),
		slowID:             "slow-doc",
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	svc := NewService(gated, env.store.Moves(), env.store, nil, testConfig(), logger)

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.GetSourceView(context.Background(), "slow-doc")
		slowDone <- err
	}()
	<-gated.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := svc.GetSourceView(context.Background(), docID)
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("GetSourceView() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("opening a document waited on another document's load")
	}

	close(gated.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("slow GetSourceView() error = %v", err)
	}
}

func TestSession_ConcurrentOpenLoadsOnce(t *testing.T) {
	env := seeded(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gated := &gatedSnapshots{SnapshotRepository: env.store.Snapshots()}
	svc := NewService(gated, env.store.Moves(), env.store, nil, testConfig(), logger)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetSourceView(context.Background(), docID); err != nil {
				t.Errorf("GetSourceView() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := gated.reads.Load(); n != 1 {
		t.Errorf("snapshot reads = %d, want 1", n)
	}
}

func TestCreateObject(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	radius := 5
	circle, err := env.svc.CreateObject(ctx, &svgdocSvc.CreateObjectRequest{
		DocumentID: docID,
		Type:       svgdoc.KindCircle,
		ParentID:   "g1",
		Attributes: svgdoc.Partial{Radius: &radius},
	})
	if err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}
	if circle.Radius != 5 {
		t.Errorf("radius = %d, want 5", circle.Radius)
	}
	want := []string{"c1", "g1", "r1", "c2", circle.ID, "END_g1", "p1"}
	if got := sourceIDs(t, env.svc); !equalIDs(got, want) {
		t.Errorf("source = %v, want %v", got, want)
	}

	group, err := env.svc.CreateObject(ctx, &svgdocSvc.CreateObjectRequest{DocumentID: docID, Type: svgdoc.KindGroup, ParentID: "root"})
	if err != nil {
		t.Fatalf("CreateObject(group at root) error = %v", err)
	}
	tree, _ := env.svc.GetTree(ctx, docID)
	if last := tree.Children[len(tree.Children)-1]; last.ID != group.ID {
		t.Errorf("last root child = %s, want new group %s", last.ID, group.ID)
	}
}

func TestCreateObject_Rejects(t *testing.T) {
	negative := -1
	opacity := float32(2)
	tests := []struct {
		name    string
		req     svgdocSvc.CreateObjectRequest
		wantErr error
	}{
		{name: "unknown type", req: svgdocSvc.CreateObjectRequest{Type: "STAR"}, wantErr: domain.ErrValidation},
		{name: "missing type", req: svgdocSvc.CreateObjectRequest{}, wantErr: domain.ErrValidation},
		{name: "negative radius", req: svgdocSvc.CreateObjectRequest{Type: svgdoc.KindCircle, Attributes: svgdoc.Partial{Radius: &negative}}, wantErr: domain.ErrValidation},
		{name: "opacity above one", req: svgdocSvc.CreateObjectRequest{Type: svgdoc.KindCircle, Attributes: svgdoc.Partial{Opacity: &opacity}}, wantErr: domain.ErrValidation},
		{name: "bad color", req: svgdocSvc.CreateObjectRequest{Type: svgdoc.KindCircle, Attributes: svgdoc.Partial{Fill: &svgdoc.Color{Red: 300}}}, wantErr: domain.ErrValidation},
		{name: "unknown parent", req: svgdocSvc.CreateObjectRequest{Type: svgdoc.KindCircle, ParentID: "nope"}, wantErr: domain.ErrNotFound},
		{name: "leaf parent", req: svgdocSvc.CreateObjectRequest{Type: svgdoc.KindCircle, ParentID: "c1"}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := seeded(t)
			req := tt.req
			req.DocumentID = docID
			if _, err := env.svc.CreateObject(context.Background(), &req); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateObject_GroupDepthLimit(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	parent := "g1" // depth 1
	for depth := 2; depth <= 3; depth++ {
		g, err := env.svc.CreateObject(ctx, &svgdocSvc.CreateObjectRequest{DocumentID: docID, Type: svgdoc.KindGroup, ParentID: parent})
		if err != nil {
			t.Fatalf("CreateObject(depth %d) error = %v", depth, err)
		}
		parent = g.ID
	}

	_, err := env.svc.CreateObject(ctx, &svgdocSvc.CreateObjectRequest{DocumentID: docID, Type: svgdoc.KindGroup, ParentID: parent})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("fourth level error = %v, want ErrValidation", err)
	}

	// Leaves are not limited by nesting
	if _, err := env.svc.CreateObject(ctx, &svgdocSvc.CreateObjectRequest{DocumentID: docID, Type: svgdoc.KindCircle, ParentID: parent}); err != nil {
		t.Errorf("leaf at depth limit error = %v", err)
	}
}

func TestMoveObject_GroupDepthLimit(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	tree := &svgdoc.Tree{Children: []*svgdoc.Object{
		{Type: svgdoc.KindGroup, ID: "a", Children: []*svgdoc.Object{
			{Type: svgdoc.KindGroup, ID: "b", Children: []*svgdoc.Object{
				{Type: svgdoc.KindCircle, ID: "x"},
			}},
		}},
		{Type: svgdoc.KindGroup, ID: "c", Children: []*svgdoc.Object{
			{Type: svgdoc.KindGroup, ID: "d", Children: []*svgdoc.Object{}},
		}},
	}}
	if _, err := env.svc.ReplaceTree(ctx, docID, "seed", tree); err != nil {
		t.Fatalf("ReplaceTree() error = %v", err)
	}

	// Moving a (2 levels deep) into d (depth 2) would nest 4 levels
	_, err := env.svc.MoveObject(ctx, &svgdocSvc.MoveObjectRequest{DocumentID: docID, ActiveID: "a", OverID: "END_d"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestEditObject(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	width := 30
	rect, err := env.svc.EditObject(ctx, &svgdocSvc.EditObjectRequest{
		DocumentID: docID,
		ObjectID:   "r1",
		Changes:    svgdoc.Partial{Width: &width},
	})
	if err != nil {
		t.Fatalf("EditObject() error = %v", err)
	}
	if rect.Width != 30 {
		t.Errorf("width = %d, want 30", rect.Width)
	}

	if _, err := env.svc.EditObject(ctx, &svgdocSvc.EditObjectRequest{DocumentID: docID, ObjectID: "r1"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty changes error = %v, want ErrValidation", err)
	}
	if _, err := env.svc.EditObject(ctx, &svgdocSvc.EditObjectRequest{DocumentID: docID, ObjectID: "nope", Changes: svgdoc.Partial{Width: &width}}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown object error = %v, want ErrNotFound", err)
	}

	view, _ := env.svc.GetSourceView(ctx, docID)
	if view.Revision != 2 {
		t.Errorf("revision = %d, want 2 after one successful edit", view.Revision)
	}
}

func TestDeleteObject_ResetsSelection(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	if _, err := env.svc.Select(ctx, docID, "peer-a", sourceview.Selection{ID: "c2"}); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if _, err := env.svc.Select(ctx, docID, "peer-b", sourceview.Selection{ID: "p1"}); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if err := env.svc.DeleteObject(ctx, docID, "peer-b", "g1"); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}

	a, _ := env.svc.Selection(ctx, docID, "peer-a")
	if !a.IsRoot() {
		t.Errorf("peer-a selection = %+v, want root after its object's group was deleted", a)
	}
	b, _ := env.svc.Selection(ctx, docID, "peer-b")
	if b.ID != "p1" {
		t.Errorf("peer-b selection = %+v, want p1", b)
	}

	if err := env.svc.DeleteObject(ctx, docID, "peer-b", "g1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSelect(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		sel     sourceview.Selection
		want    sourceview.Selection
		wantErr error
	}{
		{name: "leaf", sel: sourceview.Selection{ID: "c1"}, want: sourceview.Selection{ID: "c1", Kind: svgdoc.KindCircle}},
		{name: "closing tag selects the group", sel: sourceview.Selection{ID: "END_g1"}, want: sourceview.Selection{ID: "g1", Kind: svgdoc.KindGroup}},
		{name: "root", sel: sourceview.Selection{ID: "root"}, want: sourceview.RootSelection},
		{name: "zero value is root", sel: sourceview.Selection{}, want: sourceview.RootSelection},
		{name: "unknown", sel: sourceview.Selection{ID: "nope"}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.Select(ctx, docID, "peer", tt.sel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %+v, want %+v", got, tt.want)
			}
			stored, _ := env.svc.Selection(ctx, docID, "peer")
			if stored != tt.want {
				t.Errorf("Selection() = %+v, want %+v", stored, tt.want)
			}
		})
	}
}

func TestPathPoints(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	point, err := env.svc.AddPathPoint(ctx, &svgdocSvc.AddPathPointRequest{
		DocumentID: docID,
		PathID:     "p1",
		Command:    svgdoc.PathStart,
		Pos:        svgdoc.Vec2{X: 3, Y: 4},
	})
	if err != nil {
		t.Fatalf("AddPathPoint() error = %v", err)
	}

	if _, err := env.svc.AddPathPoint(ctx, &svgdocSvc.AddPathPointRequest{DocumentID: docID, PathID: "p1", Command: "ARC"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown command error = %v, want ErrValidation", err)
	}

	if err := env.svc.RemovePathPoint(ctx, docID, "", "p1", point.ID); err != nil {
		t.Fatalf("RemovePathPoint() error = %v", err)
	}
	tree, _ := env.svc.GetTree(ctx, docID)
	if n := len(tree.Children[2].Points); n != 0 {
		t.Errorf("p1 has %d points, want 0", n)
	}
}

func TestReplaceTree_Limits(t *testing.T) {
	cfg := testConfig()
	cfg.MaxObjectsPerDocument = 3
	env := newTestEnv(t, cfg)

	if _, err := env.svc.ReplaceTree(context.Background(), docID, "", exampleTree()); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized tree error = %v, want ErrValidation", err)
	}

	deep := &svgdoc.Tree{Children: []*svgdoc.Object{
		{Type: svgdoc.KindGroup, ID: "a", Children: []*svgdoc.Object{
			{Type: svgdoc.KindGroup, ID: "b", Children: []*svgdoc.Object{
				{Type: svgdoc.KindGroup, ID: "c", Children: []*svgdoc.Object{}},
			}},
		}},
	}}
	cfg.MaxObjectsPerDocument = 20
	cfg.MaxGroupDepth = 2
	if _, err := env.svc.ReplaceTree(context.Background(), docID, "", deep); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("deep tree error = %v, want ErrValidation", err)
	}
}
