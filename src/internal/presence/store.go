package presence

import (
	"sync"
)

// Store maps session ids to records. A single mutex guards the map and is
// held only while the map is accessed; callers work on copies.
type Store struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Upsert inserts or updates the record for sessionID. apply receives the
// current record (zero value with SessionID set when absent) and whether it
// already existed. The stored record is returned along with created.
func (s *Store) Upsert(sessionID string, apply func(rec *Record, exists bool)) (rec Record, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[sessionID]
	if !exists {
		rec = Record{SessionID: sessionID}
	}
	apply(&rec, exists)
	rec.SessionID = sessionID
	s.records[sessionID] = rec

	return rec, !exists
}

// Update changes an existing record only. It returns false and leaves the
// store untouched when sessionID is unknown.
func (s *Store) Update(sessionID string, apply func(rec *Record)) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sessionID]
	if !ok {
		return Record{}, false
	}
	apply(&rec)
	rec.SessionID = sessionID
	s.records[sessionID] = rec

	return rec, true
}

func (s *Store) Get(sessionID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[sessionID]
	return rec, ok
}

// GetAll returns a point-in-time copy of every record.
func (s *Store) GetAll() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		snapshot = append(snapshot, rec)
	}
	return snapshot
}

// Remove deletes sessionID. Removing an unknown id is a no-op.
func (s *Store) Remove(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[sessionID]; !ok {
		return false
	}
	delete(s.records, sessionID)
	return true
}

// RemoveIf deletes every record matching pred under one lock acquisition,
// so snapshot readers see either all or none of the deletions.
func (s *Store) RemoveIf(pred func(rec Record) bool) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []Record
	for id, rec := range s.records {
		if pred(rec) {
			removed = append(removed, rec)
			delete(s.records, id)
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
