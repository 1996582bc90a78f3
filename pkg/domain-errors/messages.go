package domainerrors

import "fmt"

// User-facing message templates. Field and entity names are the public names
// used by API clients (BoardId, NewColumnPositionInBoard, ...).

// CommitFailed is returned when a board could not be persisted.
const CommitFailed = "There was an error saving data."

func RequiredField(field string) string {
	return fmt.Sprintf("Please, ensure you enter %s.", field)
}

func NotFound(entity string) string {
	return fmt.Sprintf("The informed %s was not found.", entity)
}

func MustBeGreaterThan(field string, n int) string {
	return fmt.Sprintf("%s must be greater than %d.", field, n)
}

func AlreadyPresent(entity, container string) string {
	return fmt.Sprintf("That %s already is in the %s.", entity, container)
}

func InvalidFormat(field string) string {
	return fmt.Sprintf("The informed %s is invalid.", field)
}
