// Package atom provides a single-slot observable value.
//
// An Atom holds an immutable value. Replacing it notifies subscribers
// synchronously, unless the configured equality reports the new value as
// equal to the previous one. Subscribers receive no payload and are expected
// to re-read the value with Get.
//
// Atoms are not safe for concurrent use.
package atom

// EqualFunc reports whether two values are equal for notification purposes.
type EqualFunc[T any] func(a, b T) bool

type Option[T any] func(*Atom[T])

// WithEqual overrides the equality used to suppress notifications.
func WithEqual[T any](eq EqualFunc[T]) Option[T] {
	return func(a *Atom[T]) {
		a.equal = eq
	}
}

type Atom[T any] struct {
	value       T
	equal       EqualFunc[T]
	subscribers []*Subscription
	nextID      uint64
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uint64
	fn     func()
	detach func(*Subscription)
}

// Unsubscribe detaches the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.detach == nil {
		return
	}
	detach := s.detach
	s.detach = nil
	detach(s)
}

func New[T any](initial T, opts ...Option[T]) *Atom[T] {
	a := &Atom[T]{
		value: initial,
		equal: Identical[T],
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Atom[T]) Get() T { return a.value }

// Set replaces the stored value. It returns true if subscribers were
// notified, false if the value was considered equal to the current one.
func (a *Atom[T]) Set(v T) bool {
	if a.equal(a.value, v) {
		return false
	}
	a.value = v
	// Subscribers may (un)subscribe while being notified; the round
	// in flight uses the set captured here.
	subscribers := make([]*Subscription, len(a.subscribers))
	copy(subscribers, a.subscribers)
	for _, s := range subscribers {
		s.fn()
	}
	return true
}

func (a *Atom[T]) Subscribe(fn func()) *Subscription {
	a.nextID++
	s := &Subscription{id: a.nextID, fn: fn, detach: a.remove}
	a.subscribers = append(a.subscribers, s)
	return s
}

func (a *Atom[T]) Unsubscribe(s *Subscription) {
	s.Unsubscribe()
}

// Subscribers returns the number of attached subscriptions.
func (a *Atom[T]) Subscribers() int { return len(a.subscribers) }

func (a *Atom[T]) remove(s *Subscription) {
	for i, x := range a.subscribers {
		if x.id == s.id {
			a.subscribers = append(a.subscribers[:i:i], a.subscribers[i+1:]...)
			return
		}
	}
}

// Identical is the default equality: values are equal when they are
// identical as interface values. Non-comparable values are never equal.
func Identical[T any](a, b T) bool {
	defer func() {
		// Comparing interfaces holding slices, maps or funcs panics.
		_ = recover()
	}()
	return any(a) == any(b)
}
