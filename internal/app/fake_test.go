package app

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

type sent struct {
	text   string
	markup *tele.ReplyMarkup
	edited bool
}

// fakeContext implements the subset of tele.Context the handlers use.
type fakeContext struct {
	tele.Context

	mu       sync.Mutex
	user     *tele.User
	chat     *tele.Chat
	msg      *tele.Message
	callback *tele.Callback
	store    map[string]interface{}

	out       []sent
	deleted   int
	deleteErr error
	responded []*tele.CallbackResponse
}

func newUser(id int64, username string) *tele.User {
	return &tele.User{ID: id, Username: username}
}

func textContext(user *tele.User, text string) *fakeContext {
	chat := &tele.Chat{ID: user.ID, Type: tele.ChatPrivate}
	return &fakeContext{
		user:  user,
		chat:  chat,
		msg:   &tele.Message{ID: 10, Text: text, Sender: user, Chat: chat},
		store: map[string]interface{}{},
	}
}

func callbackContext(user *tele.User, unique string) *fakeContext {
	c := textContext(user, "")
	c.callback = &tele.Callback{ID: "cb", Sender: user, Message: c.msg, Data: "\f" + unique}
	return c
}

func (f *fakeContext) Sender() *tele.User       { return f.user }
func (f *fakeContext) Chat() *tele.Chat         { return f.chat }
func (f *fakeContext) Message() *tele.Message   { return f.msg }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }

func (f *fakeContext) Update() tele.Update {
	if f.callback != nil {
		return tele.Update{ID: 1, Callback: f.callback}
	}
	return tele.Update{ID: 1, Message: f.msg}
}

func (f *fakeContext) Text() string {
	if f.msg == nil || f.callback != nil {
		return ""
	}
	return f.msg.Text
}

func (f *fakeContext) Get(key string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key]
}

func (f *fakeContext) Set(key string, val interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = val
}

func (f *fakeContext) record(what interface{}, opts []interface{}, edited bool) {
	s := sent{edited: edited}
	s.text, _ = what.(string)
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so != nil {
			s.markup = so.ReplyMarkup
		}
	}
	f.mu.Lock()
	f.out = append(f.out, s)
	f.mu.Unlock()
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.record(what, opts, false)
	return nil
}

func (f *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	f.record(what, opts, true)
	return nil
}

func (f *fakeContext) Delete() error {
	f.deleted++
	return f.deleteErr
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responded = append(f.responded, resp...)
	return nil
}

func (f *fakeContext) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.out) == 0 {
		return sent{}
	}
	return f.out[len(f.out)-1]
}
