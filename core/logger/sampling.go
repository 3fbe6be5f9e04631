package logger

import (
	"strconv"
	"strings"
	"sync"
)

const (
	defaultSampleNum = 1
	defaultSampleDen = 50
)

// eventSampler passes num of every den occurrences, counted per event name,
// so a chatty event cannot starve a rare one. A zero ratio passes everything.
type eventSampler struct {
	mu       sync.Mutex
	num, den int
	seen     map[string]int
}

func (s *eventSampler) configure(num, den int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if num <= 0 || den <= 0 {
		num, den = 0, 0
	}
	s.num, s.den = min(num, den), den
	s.seen = make(map[string]int)
}

func (s *eventSampler) allow(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.den == 0 {
		return true
	}
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	n := s.seen[event] % s.den
	s.seen[event] = n + 1
	return n < s.num
}

// parseRatio reads "num/den" or a bare "every N" count. Anything else,
// including non-positive numbers, yields 0/0.
func parseRatio(ratio string) (int, int) {
	ratio = strings.TrimSpace(ratio)
	if ratio == "" {
		return 0, 0
	}
	if a, b, ok := strings.Cut(ratio, "/"); ok {
		num, errA := strconv.Atoi(strings.TrimSpace(a))
		den, errB := strconv.Atoi(strings.TrimSpace(b))
		if errA != nil || errB != nil || num <= 0 || den <= 0 {
			return 0, 0
		}
		return min(num, den), den
	}
	every, err := strconv.Atoi(ratio)
	if err != nil || every <= 0 {
		return 0, 0
	}
	return 1, every
}
