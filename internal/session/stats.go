package session

import (
	"cmp"
	"slices"

	"github.com/darkjarvis/darkjarvis/internal/store"
)

// topWordsLimit is how many words Stats reports.
const topWordsLimit = 5

// WordCount is a word and how often it was seen.
type WordCount struct {
	Word  string
	Count int
}

// Stats summarizes chat activity.
type Stats struct {
	TotalUsers    int
	TotalGroups   int
	TotalMessages int
	// MostActive is nil when nobody has written anything yet.
	MostActive *store.UserRecord
	TopWords   []WordCount
}

// Stats aggregates message and word counts across all users.
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{TotalUsers: len(s.users), TotalGroups: len(s.groups)}
	totals := make(map[string]int)
	for _, u := range s.users {
		st.TotalMessages += u.MessageCount
		if u.MessageCount > 0 && (st.MostActive == nil ||
			u.MessageCount > st.MostActive.MessageCount ||
			(u.MessageCount == st.MostActive.MessageCount && u.ID < st.MostActive.ID)) {
			st.MostActive = u
		}
		for w, c := range u.Words {
			totals[w] += c
		}
	}
	if st.MostActive != nil {
		st.MostActive = st.MostActive.Clone()
	}

	for w, c := range totals {
		st.TopWords = append(st.TopWords, WordCount{Word: w, Count: c})
	}
	slices.SortFunc(st.TopWords, func(a, b WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if len(st.TopWords) > topWordsLimit {
		st.TopWords = st.TopWords[:topWordsLimit]
	}
	return st
}
