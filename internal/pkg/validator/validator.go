package validator

// Validator validates structs against their declarative field rules.
type Validator interface {
	// Validate returns nil when data passes all rules, or an error carrying
	// a field-to-message map when it does not.
	Validate(data any) error
}
