package uid

// NumberID generates numeric identifiers.
type NumberID interface {
	// Generate returns a new int64 ID.
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	// Generate returns a new string ID.
	Generate() string
}
