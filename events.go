package quorum

import (
	"context"
	"sync"
)

// Event is a notification consumed by external observers. Events are
// append only, one entry per occurrence.
type Event interface {
	EventName() string
}

// OwnerAdded is emitted when an identity joins an owner registry.
type OwnerAdded struct {
	Owner Address `json:"owner"`
}

func (OwnerAdded) EventName() string { return "OwnerAdded" }

// OwnerRemoved is emitted when an identity leaves an owner registry.
type OwnerRemoved struct {
	Owner Address `json:"owner"`
}

func (OwnerRemoved) EventName() string { return "OwnerRemoved" }

// ThresholdChanged is emitted when the number of required signatures is
// updated.
type ThresholdChanged struct {
	Threshold uint32 `json:"threshold"`
}

func (ThresholdChanged) EventName() string { return "ThresholdChanged" }

// TransactionFailed is emitted when an authorized inner call fails. Code
// and Reason describe the failure, Index is the position of the call
// within a batch (always 0 for a single call).
type TransactionFailed struct {
	Nonce  uint64  `json:"nonce"`
	Index  int     `json:"index"`
	Target Address `json:"target"`
	Code   uint32  `json:"code"`
	Reason string  `json:"reason"`
}

func (TransactionFailed) EventName() string { return "TransactionFailed" }

// TransactionExecuted is emitted when an authorized inner call completed.
type TransactionExecuted struct {
	Nonce  uint64  `json:"nonce"`
	Index  int     `json:"index"`
	Target Address `json:"target"`
}

func (TransactionExecuted) EventName() string { return "TransactionExecuted" }

// NamedEvent is the transport representation of an event.
type NamedEvent struct {
	Name       string `json:"name"`
	Attributes Event  `json:"attributes"`
}

// Named wraps an event together with its name.
func Named(e Event) NamedEvent {
	return NamedEvent{Name: e.EventName(), Attributes: e}
}

// EventEmitter is given to code that produces events.
type EventEmitter interface {
	Emit(Event)
}

// EventBuffer collects events of a single call. The buffer is dropped when
// the call fails, so that no event of a reverted call is ever published.
type EventBuffer struct {
	events []Event
}

var _ EventEmitter = (*EventBuffer)(nil)

// Emit appends an event to the buffer.
func (b *EventBuffer) Emit(e Event) {
	b.events = append(b.events, e)
}

// Events returns all buffered events in emission order.
func (b *EventBuffer) Events() []Event {
	return b.events
}

// Reset drops all buffered events.
func (b *EventBuffer) Reset() {
	b.events = nil
}

// EventSink is the host side consumer of events. Events are published only
// once the request that produced them is committed.
type EventSink interface {
	Publish(ctx context.Context, source Address, events []Event)
}

// EventRecord is a single entry of the event log.
type EventRecord struct {
	Height int64   `json:"height,omitempty"`
	Source Address `json:"source"`
	NamedEvent
}

// EventLog is an append only, in memory event sink. It is safe for
// concurrent use.
type EventLog struct {
	mu      sync.RWMutex
	records []EventRecord
}

var _ EventSink = (*EventLog)(nil)

// NewEventLog returns an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Publish appends all events. The record height is taken from the
// context if present.
func (l *EventLog) Publish(ctx context.Context, source Address, events []Event) {
	height, _ := GetHeight(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range events {
		l.records = append(l.records, EventRecord{
			Height:     height,
			Source:     source.Clone(),
			NamedEvent: Named(e),
		})
	}
}

// Records returns a copy of all records in publication order.
func (l *EventLog) Records() []EventRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	res := make([]EventRecord, len(l.records))
	copy(res, l.records)
	return res
}

// Events returns all published events in publication order.
func (l *EventLog) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	res := make([]Event, len(l.records))
	for i, r := range l.records {
		res[i] = r.Attributes
	}
	return res
}

// Len returns the number of records.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// PendingEvents is a sink that holds publications until the state that
// produced them is durable. Flush forwards them, Reset drops them. It is
// safe for concurrent use.
type PendingEvents struct {
	mu      sync.Mutex
	batches []pendingBatch
}

type pendingBatch struct {
	source Address
	events []Event
}

var _ EventSink = (*PendingEvents)(nil)

// NewPendingEvents returns an empty pending sink.
func NewPendingEvents() *PendingEvents {
	return &PendingEvents{}
}

// Publish holds the events until the next Flush or Reset.
func (p *PendingEvents) Publish(ctx context.Context, source Address, events []Event) {
	if len(events) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, pendingBatch{source: source.Clone(), events: events})
}

// Flush publishes all held events to the sink, in publication order, and
// empties the pending sink.
func (p *PendingEvents) Flush(ctx context.Context, sink EventSink) {
	p.mu.Lock()
	batches := p.batches
	p.batches = nil
	p.mu.Unlock()

	for _, b := range batches {
		sink.Publish(ctx, b.source, b.events)
	}
}

// Reset drops all held events.
func (p *PendingEvents) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = nil
}

// Len returns the number of held events.
func (p *PendingEvents) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for _, b := range p.batches {
		n += len(b.events)
	}
	return n
}
