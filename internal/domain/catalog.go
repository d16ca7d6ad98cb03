package domain

import "fmt"

// Validate checks the catalog invariants the engine relies on: at least one
// question, positive marks on every question and a pass mark within 0..100.
func (c Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return ErrEmptyCatalog
	}
	for _, q := range c.Questions {
		if q.Marks <= 0 {
			return fmt.Errorf("%w: question %s has %d marks", ErrInvalidMarks, q.ID, q.Marks)
		}
	}
	if c.PassMark != nil && (*c.PassMark < 0 || *c.PassMark > 100) {
		return fmt.Errorf("%w: %d", ErrInvalidPassMark, *c.PassMark)
	}
	return nil
}
