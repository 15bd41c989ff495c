package initialized

// A witness type used to detect structs that were not built through their
// constructor.
//
// In Go, `new(T)`, `T{}` or `T{/* fields */}` all produce a value that has
// type `T` but may be missing everything the constructor sets up (caches,
// indexes, defaults). Mapping with such a value would silently skip every
// field instead of failing.
//
// Operation manual:
// - add a field `witness IsInitialized` in your struct
// - call `initialized.Make()` from your constructor
// - call `self.witness.Assert()` whenever you access data from your struct.
//
// Result: a panic if the struct was created without its constructor.
type IsInitialized struct {
	isInitialized bool
}

// Create a `IsInitialized`.
func Make() IsInitialized {
	return IsInitialized{
		isInitialized: true,
	}
}

// Assert that this `IsInitialized` has been initialized, i.e. if it was created
// by calling `initialized.Make()`.
//
// Panics otherwise.
func (witness IsInitialized) Assert() {
	if !witness.isInitialized {
		panic("Struct was not initialized")
	}
}

// Return `true` if this witness was created by `initialized.Make()`.
//
// Use this instead of `Assert` on paths that should degrade rather than panic.
func (witness IsInitialized) IsSet() bool {
	return witness.isInitialized
}
