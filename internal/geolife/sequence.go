package geolife

// Sequence hands out increasing identifiers starting at 1
type Sequence struct {
	last int64
}

// Next returns the next identifier
func (s *Sequence) Next() int64 {
	s.last++
	return s.last
}

// Last returns the most recently issued identifier, or 0
func (s *Sequence) Last() int64 {
	return s.last
}
