package reflectx

import "reflect"

// IsNilValue further encapsulates the IsNil method.
// The IsNil method is executed if val is of a type map, chan, slice, interface, ptr, func or unsafe pointer.
// Otherwise, return false — a concrete value (struct, int, string, ...) is never nil.
// In particular, if val itself is an illegal value (e.g., from a nil interface), it checks IsValid first and returns true instead of panicking.
func IsNilValue(val reflect.Value) bool {
	// Determine if reflect.Value itself is an illegal value, e.g., nil, to avoid a subsequent panic when fetching val.Type().
	if !val.IsValid() {
		return true
	}
	// Determine if the IsNil method can be executed based on the type.
	switch val.Type().Kind() {
	case reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface, reflect.Ptr, reflect.Func, reflect.UnsafePointer:
		return val.IsNil()
	default:
		return false
	}
}
