package app

import (
	"sync"

	"screening-score-service/internal/domain"
)

// StatisticsHub fans out fresh cohort statistics to subscribers of a screening.
type StatisticsHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.CohortStatistics]struct{}
}

func NewStatisticsHub() *StatisticsHub {
	return &StatisticsHub{
		subscribers: make(map[string]map[chan domain.CohortStatistics]struct{}),
	}
}

func (h *StatisticsHub) subscribe(screeningID string) (chan domain.CohortStatistics, func()) {
	ch := make(chan domain.CohortStatistics, 1)

	h.mu.Lock()
	subs, ok := h.subscribers[screeningID]
	if !ok {
		subs = make(map[chan domain.CohortStatistics]struct{})
		h.subscribers[screeningID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[screeningID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, screeningID)
		}
	}
	return ch, cancel
}

func (h *StatisticsHub) hasSubscribers(screeningID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[screeningID]) > 0
}

// deliver sends to one subscriber if it is still registered.
func (h *StatisticsHub) deliver(screeningID string, ch chan domain.CohortStatistics, stats domain.CohortStatistics) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[screeningID][ch]; ok {
		sendLatest(ch, stats)
	}
}

func (h *StatisticsHub) broadcast(stats domain.CohortStatistics) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[stats.ScreeningID] {
		sendLatest(ch, stats)
	}
}

// sendLatest replaces an unread update so slow readers only ever see the newest one.
func sendLatest(ch chan domain.CohortStatistics, stats domain.CohortStatistics) {
	select {
	case ch <- stats:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- stats
	}
}
