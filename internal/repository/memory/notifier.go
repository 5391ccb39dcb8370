package memory

import (
	"context"
	"sync"

	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
)

// Notifier broadcasts change events to subscribers of the same process.
// Slow subscribers miss events rather than block publishers.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan svgdocSvc.ChangeEvent
}

// NewNotifier creates an in-process notifier
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]chan svgdocSvc.ChangeEvent)}
}

// Publish delivers event to every current subscriber of its document
func (n *Notifier) Publish(_ context.Context, event *svgdocSvc.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[event.DocumentID] {
		select {
		case ch <- *event:
		default:
		}
	}
	return nil
}

// Subscribe registers for the events of one document
func (n *Notifier) Subscribe(ctx context.Context, documentID string) (<-chan svgdocSvc.ChangeEvent, func(), error) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	ch := make(chan svgdocSvc.ChangeEvent, 16)
	if n.subs[documentID] == nil {
		n.subs[documentID] = make(map[int]chan svgdocSvc.ChangeEvent)
	}
	n.subs[documentID][id] = ch
	n.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[documentID], id)
			if len(n.subs[documentID]) == 0 {
				delete(n.subs, documentID)
			}
			close(ch)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}
