package order

// OptInt is an optional int. The zero value is unset.
type OptInt struct {
	Value int
	Set   bool
}

// NewOptInt returns a set OptInt holding v.
func NewOptInt(v int) OptInt {
	return OptInt{Value: v, Set: true}
}

// Get returns the value and whether it is set.
func (o OptInt) Get() (v int, ok bool) {
	if !o.Set {
		return v, false
	}
	return o.Value, true
}

// IsSet reports whether the value is set.
func (o OptInt) IsSet() bool { return o.Set }

// OptString is an optional string. The zero value is unset, which is
// distinct from a set empty string.
type OptString struct {
	Value string
	Set   bool
}

// NewOptString returns a set OptString holding v.
func NewOptString(v string) OptString {
	return OptString{Value: v, Set: true}
}

// Get returns the value and whether it is set.
func (o OptString) Get() (v string, ok bool) {
	if !o.Set {
		return v, false
	}
	return o.Value, true
}

// IsSet reports whether the value is set.
func (o OptString) IsSet() bool { return o.Set }
