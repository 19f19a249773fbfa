package settings

import "fmt"

// entryField is the field holding the string of each list element.
const entryField = "entry"

// StringList returns the strings stored as an array under key.
// A key without an array yields an empty list.
func (s *Store) StringList(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readStringList(CleanKey(key))
}

// SetStringList replaces the array under key with list. Longer previous
// arrays are removed entirely; the write is all or nothing.
func (s *Store) SetStringList(key string, list []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeStringList(CleanKey(key), list)
}

// PrependStringList moves value to the front of the list under key, drops
// other occurrences of it and truncates the list to the length stored under
// maxLengthKey. Use it for "most recent" lists.
func (s *Store) PrependStringList(key, value, maxLengthKey string) error {
	maxLen, err := s.Int(maxLengthKey)
	if err != nil {
		return err
	}
	maxLen = max(maxLen, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	key = CleanKey(key)
	current, err := s.readStringList(key)
	if err != nil {
		return err
	}

	next := make([]string, 0, len(current)+1)
	next = append(next, value)
	for _, str := range current {
		if str != value {
			next = append(next, str)
		}
	}
	if len(next) > maxLen {
		next = next[:maxLen]
	}

	return s.writeStringList(key, next)
}

func (s *Store) readStringList(key string) ([]string, error) {
	size, err := s.engine.BeginReadArray(key)
	if err != nil {
		return nil, fmt.Errorf("read list %q: %w", key, err)
	}
	defer s.engine.EndArray()

	list := make([]string, 0, size)
	for i := range size {
		if err := s.engine.SetArrayIndex(i); err != nil {
			return nil, fmt.Errorf("read list %q: %w", key, err)
		}
		raw, _, err := s.engine.Read(entryField)
		if err != nil {
			return nil, fmt.Errorf("read list %q entry %d: %w", key, i, err)
		}
		list = append(list, Text(raw))
	}
	return list, nil
}

func (s *Store) writeStringList(key string, list []string) error {
	if err := s.engine.BeginWriteArray(key, len(list)); err != nil {
		return fmt.Errorf("write list %q: %w", key, err)
	}

	committed := false
	defer func() {
		if !committed {
			s.engine.DiscardArray()
		}
	}()

	for i, str := range list {
		if err := s.engine.SetArrayIndex(i); err != nil {
			return fmt.Errorf("write list %q: %w", key, err)
		}
		if err := s.engine.Write(entryField, str); err != nil {
			return fmt.Errorf("write list %q entry %d: %w", key, i, err)
		}
	}

	// EndArray pops the scope even when the commit fails.
	committed = true
	if err := s.engine.EndArray(); err != nil {
		return fmt.Errorf("write list %q: %w", key, err)
	}
	return nil
}
