package middleware

import (
	"slices"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "tg.counters"

// sendCounters tracks what a handler sent for one update. Sends may finish on
// dispatcher workers, hence the atomics.
type sendCounters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

func (s *sendCounters) record(opts []interface{}) {
	s.messages.Add(1)
	if slices.ContainsFunc(opts, carriesMarkup) {
		s.keyboard.Store(true)
	}
}

func carriesMarkup(o interface{}) bool {
	switch v := o.(type) {
	case *tele.SendOptions:
		return v != nil && v.ReplyMarkup != nil
	case *tele.ReplyMarkup:
		return v != nil
	}
	return false
}

// countingContext counts successful Send, Reply and Edit calls.
type countingContext struct {
	tele.Context
	counters *sendCounters
}

func (c countingContext) Send(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) Edit(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Edit(what, opts...), opts)
}

func (c countingContext) count(err error, opts []interface{}) error {
	if err == nil {
		c.counters.record(opts)
	}
	return err
}

// MessageMetricsMiddleware counts outgoing messages per update for the
// handler summary line.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &sendCounters{}
		c.Set(countersKey, counters)
		return next(countingContext{Context: c, counters: counters})
	}
}

// GetCounters returns the number of messages sent so far and whether any
// carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	counters, _ := c.Get(countersKey).(*sendCounters)
	if counters == nil {
		return 0, false
	}
	return int(counters.messages.Load()), counters.keyboard.Load()
}
