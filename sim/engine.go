package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller
	Schedule(e Event)
}

// A CancelableScheduler can also look up and remove pending events.
type CancelableScheduler interface {
	EventScheduler

	// Pending tells if an event of the given kind is pending for the entity.
	Pending(kind EventKind, entity Entity) bool

	// Cancel removes the earliest pending event of the given kind for the
	// entity. It returns false if no such event exists.
	Cancel(kind EventKind, entity Entity) bool
}
