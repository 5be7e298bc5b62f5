// SPDX-License-Identifier: MIT

package matcher

// SessionLookupIndex maps session alias tokens to their canonical session
// names, with a first-character and length bucketed side index that narrows
// fuzzy lookups. Bucketing is a pure optimization: GetCandidates always
// returns a superset of the tokens TokensClose could accept.
type SessionLookupIndex struct {
	direct  map[string]string
	buckets map[byte]map[int][]string
}

// NewSessionLookupIndex returns an empty index.
func NewSessionLookupIndex() *SessionLookupIndex {
	return &SessionLookupIndex{
		direct:  make(map[string]string),
		buckets: make(map[byte]map[int][]string),
	}
}

// Add registers an alias token for a canonical session name. Keys are
// normalized before insertion; empty normalized keys are dropped.
func (i *SessionLookupIndex) Add(key, canonical string) {
	norm := NormalizeToken(key)
	if norm == "" {
		return
	}
	if _, exists := i.direct[norm]; exists {
		return
	}
	i.direct[norm] = canonical

	first := norm[0]
	byLen, ok := i.buckets[first]
	if !ok {
		byLen = make(map[int][]string)
		i.buckets[first] = byLen
	}
	for _, l := range []int{len(norm) - 1, len(norm), len(norm) + 1} {
		byLen[l] = append(byLen[l], norm)
	}
}

// GetDirect returns the canonical session for an exact normalized token.
func (i *SessionLookupIndex) GetDirect(token string) (string, bool) {
	canonical, ok := i.direct[NormalizeToken(token)]
	return canonical, ok
}

// GetCandidates returns the indexed tokens sharing the token's first
// character with length within one of the token's length.
func (i *SessionLookupIndex) GetCandidates(token string) []string {
	norm := NormalizeToken(token)
	if norm == "" {
		return nil
	}
	byLen, ok := i.buckets[norm[0]]
	if !ok {
		return nil
	}
	return byLen[len(norm)]
}

// Canonical resolves an indexed token back to its canonical session.
func (i *SessionLookupIndex) Canonical(token string) (string, bool) {
	canonical, ok := i.direct[token]
	return canonical, ok
}

// Len returns the number of distinct alias tokens.
func (i *SessionLookupIndex) Len() int { return len(i.direct) }
