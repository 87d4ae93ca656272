package ratelimit

// Stats is a point-in-time summary of the tracked key set, reported by the
// operator statistics endpoint.
type Stats struct {
	TotalKeys   int   `json:"total_keys"`
	ActiveKeys  int   `json:"active_keys"`
	MemoryUsage int64 `json:"memory_usage"`
}

// approximate per-entry overhead: map bucket slot, key header, Entry struct.
const entryOverheadBytes = 96

// Stats reports counts over the tracked key set. ActiveKeys counts entries
// whose window has not yet expired; MemoryUsage is an estimate, not an
// accounting of actual heap use.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stats := Stats{TotalKeys: len(s.entries)}
	for k, e := range s.entries {
		if now.Before(e.WindowResetAt) {
			stats.ActiveKeys++
		}
		stats.MemoryUsage += int64(len(k) + entryOverheadBytes)
	}
	return stats
}
