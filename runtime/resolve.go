package runtime

import "fmt"

// Resolve walks the superclass chain from classID looking for selector and
// returns the implementing method-code ref. First match from the most
// specific class outward wins; single inheritance, no combination. Fails
// with ErrMethodNotFound when the chain is exhausted.
//
// Sends to a Class object resolve through this same walk, but the caller
// starts it at the receiving class itself rather than at the receiver's
// class — a class's selectors live in its own table and its ancestors', not
// in Class's instance methods.
func (s *Store) Resolve(classID, selector string) (string, error) {
	seen := 0
	for id := classID; id != ""; {
		class, err := s.Entity(id)
		if err != nil {
			return "", fmt.Errorf("resolving %s>>%s: %w", classID, selector, err)
		}
		if ref, ok := class.Selector(selector); ok {
			return ref, nil
		}
		id = class.Superclass

		// Guard against a superclass cycle in corrupted store data.
		if seen++; seen > 1024 {
			break
		}
	}
	return "", fmt.Errorf("%s>>%s: %w", classID, selector, ErrMethodNotFound)
}
