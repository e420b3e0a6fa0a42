package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// ValueOr dereferences v, returning fallback when v is nil
func ValueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
