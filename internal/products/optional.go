package product

// Optional distinguishes "field absent from the request" from "field
// explicitly provided", so partial updates never erase stored data by
// accident. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Set wraps an explicitly provided value.
func Set[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the provided value, or fallback when unset.
func (o Optional[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}
