package incidents

import "github.com/oapi-codegen/nullable"

// valueOf returns the value of a PATCH field when one was sent. Omitted keys
// and explicit nulls both report false.
func valueOf[T any](f nullable.Nullable[T]) (T, bool) {
	v, err := f.Get()
	return v, err == nil
}

// convert maps the value of a PATCH field, keeping the omitted and null states.
func convert[T, U any](f nullable.Nullable[T], fn func(T) U) nullable.Nullable[U] {
	switch {
	case f.IsNull():
		return nullable.NewNullNullable[U]()
	case f.IsSpecified():
		return nullable.NewNullableWithValue(fn(f.MustGet()))
	default:
		return nil
	}
}
