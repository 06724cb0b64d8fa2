package pipeline

import "sync"

// DefaultHistorySize is how many exchanges a History keeps.
const DefaultHistorySize = 5

// Exchange is one answered question.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// History keeps the most recent exchanges, oldest first.
type History struct {
	mu      sync.Mutex
	size    int
	entries []Exchange
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

func (h *History) Add(question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Exchange{Question: question, Answer: answer})
	if len(h.entries) > h.size {
		h.entries = h.entries[len(h.entries)-h.size:]
	}
}

func (h *History) Entries() []Exchange {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Exchange(nil), h.entries...)
}
