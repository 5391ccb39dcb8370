package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	svgdocSvc "vecteditor/internal/domain/services/svgdoc"

	"github.com/alicebob/miniredis/v2"
)

func setupNotifier(t *testing.T) (*Notifier, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := NewNotifier(context.Background(), "redis://"+s.Addr(), logger)
	if err != nil {
		t.Fatalf("NewNotifier failed: %v", err)
	}
	t.Cleanup(func() { _ = n.Close() })
	return n, s
}

func receive(t *testing.T, events <-chan svgdocSvc.ChangeEvent) svgdocSvc.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return svgdocSvc.ChangeEvent{}
}

func TestNewNotifier_BadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewNotifier(context.Background(), "not a url", logger); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	n, _ := setupNotifier(t)
	ctx := context.Background()

	events, cancel, err := n.Subscribe(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	other, cancelOther, err := n.Subscribe(ctx, "doc-2")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancelOther()

	want := svgdocSvc.ChangeEvent{
		DocumentID: "doc-1",
		Revision:   3,
		PeerID:     "peer-a",
		Action:     svgdocSvc.ActionMove,
		ObjectID:   "c1",
	}
	if err := n.Publish(ctx, &want); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if got := receive(t, events); got != want {
		t.Errorf("received %+v, want %+v", got, want)
	}

	select {
	case ev := <-other:
		t.Errorf("doc-2 subscriber received %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifier_CancelClosesChannel(t *testing.T) {
	n, _ := setupNotifier(t)

	events, cancel, err := n.Subscribe(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNotifier_SkipsMalformedPayload(t *testing.T) {
	n, s := setupNotifier(t)
	ctx := context.Background()

	events, cancel, err := n.Subscribe(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	s.Publish(defaultPrefix+"doc-1", "{not json")
	want := svgdocSvc.ChangeEvent{DocumentID: "doc-1", Revision: 1, Action: svgdocSvc.ActionEdit}
	if err := n.Publish(ctx, &want); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if got := receive(t, events); got != want {
		t.Errorf("received %+v, want %+v", got, want)
	}
}
