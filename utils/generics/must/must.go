package must

// Must panics if err is non-nil, otherwise it returns v.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
