package sim

import (
	"container/heap"
	"errors"
	"sync"
)

// ErrEmptyQueue is returned when popping from a queue that has no events.
var ErrEmptyQueue = errors.New("event list is empty")

// EventQueue is a queue of events ordered by time. Events with the same time
// are popped in the order they are pushed.
type EventQueue struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
	idGen   IDGenerator
}

// NewEventQueue creates and returns a newly created EventQueue. IDs are
// assigned to events that do not carry one.
func NewEventQueue(idGen IDGenerator) *EventQueue {
	if idGen == nil {
		idGen = NewSequentialIDGenerator()
	}

	q := &EventQueue{idGen: idGen}
	q.events = make([]*queuedEvent, 0)
	heap.Init(&q.events)

	return q
}

// Push adds an event to the queue.
func (q *EventQueue) Push(evt Event) {
	q.Lock()
	defer q.Unlock()

	if evt.ID == "" {
		evt.ID = q.idGen.Generate()
	}

	heap.Push(&q.events, &queuedEvent{event: evt, seq: q.nextSeq})
	q.nextSeq++
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() (Event, error) {
	q.Lock()
	defer q.Unlock()

	if q.events.Len() == 0 {
		return Event{}, ErrEmptyQueue
	}

	qe := heap.Pop(&q.events).(*queuedEvent)

	return qe.event, nil
}

// Peek returns the earliest event without removing it from the queue.
func (q *EventQueue) Peek() (Event, error) {
	q.Lock()
	defer q.Unlock()

	if q.events.Len() == 0 {
		return Event{}, ErrEmptyQueue
	}

	return q.events[0].event, nil
}

// Len returns the number of events in the queue.
func (q *EventQueue) Len() int {
	q.Lock()
	defer q.Unlock()

	return q.events.Len()
}

// Pending tells if there is an event of the given kind for the entity.
func (q *EventQueue) Pending(kind EventKind, entity Entity) bool {
	q.Lock()
	defer q.Unlock()

	return q.find(kind, entity) >= 0
}

// PendingKind tells if there is an event of the given kind for any entity.
func (q *EventQueue) PendingKind(kind EventKind) bool {
	q.Lock()
	defer q.Unlock()

	for _, qe := range q.events {
		if qe.event.Kind == kind {
			return true
		}
	}

	return false
}

// Cancel removes the earliest event of the given kind for the entity. It
// returns false if no such event is found.
func (q *EventQueue) Cancel(kind EventKind, entity Entity) bool {
	q.Lock()
	defer q.Unlock()

	i := q.find(kind, entity)
	if i < 0 {
		return false
	}

	heap.Remove(&q.events, i)

	return true
}

func (q *EventQueue) find(kind EventKind, entity Entity) int {
	found := -1

	for i, qe := range q.events {
		if qe.event.Kind != kind || qe.event.Entity != entity {
			continue
		}

		if found < 0 || q.events.Less(i, found) {
			found = i
		}
	}

	return found
}

type queuedEvent struct {
	event Event
	seq   uint64
	index int
}

type eventHeap []*queuedEvent

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h)
}

// Less orders by time first and by insertion order for equal times.
func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Time != h[j].event.Time {
		return h[i].event.Time < h[j].event.Time
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	qe := x.(*queuedEvent)
	qe.index = len(*h)
	*h = append(*h, qe)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	qe := old[n-1]
	old[n-1] = nil
	qe.index = -1
	*h = old[0 : n-1]

	return qe
}
