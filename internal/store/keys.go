package store

import "golang.org/x/text/unicode/norm"

// checkKey validates and, when enabled, NFC-normalizes a key-like argument.
// Also used for search prefixes and substrings.
func (m *Manager) checkKey(key string) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	if m.normalizeKeys {
		key = norm.NFC.String(key)
	}
	return key, nil
}

// checkPair validates a key and value for a write.
func (m *Manager) checkPair(key, value string) (string, error) {
	key, err := m.checkKey(key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", ErrValueRequired
	}
	return key, nil
}
