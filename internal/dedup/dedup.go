package dedup

import (
	"bizbuysell-scraper/services/storage"
)

// Set tracks listing identities already written this run and in prior
// same-day files. It is a plain value passed explicitly to each stage, so
// two pipelines never share state by accident.
type Set struct {
	seen map[string]struct{}
}

// NewSet creates an empty dedup set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Seed loads identity keys from existing CSV files, using the same
// listing-id-or-URL key the pipelines deduplicate on, so rows written
// without an id still dedup across same-day runs. Missing files are
// ignored; a malformed file aborts the seed and is reported to the caller.
func (s *Set) Seed(paths ...string) error {
	for _, path := range paths {
		stubs, err := storage.ReadStubs(path)
		if err != nil {
			return err
		}
		for _, stub := range stubs {
			s.seen[stub.Key()] = struct{}{}
		}
	}
	return nil
}

// Seen reports whether key was already recorded.
func (s *Set) Seen(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// Mark records key. Returns false when it was already present.
func (s *Set) Mark(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of recorded keys.
func (s *Set) Len() int {
	return len(s.seen)
}
