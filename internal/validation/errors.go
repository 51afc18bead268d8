package validation

// Error reports a single invalid input field. Validation runs before
// any mutation or write, so a failed check never leaves partial state
// behind.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}
