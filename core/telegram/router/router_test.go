package router

import (
	"errors"
	"testing"

	tg "github.com/m3rciful/quizbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

type fakeCtx struct {
	tele.Context
	user      *tele.User
	text      string
	callback  *tele.Callback
	store     map[string]interface{}
	responded int
}

func newFakeCtx(username, text string) *fakeCtx {
	return &fakeCtx{
		user:  &tele.User{ID: 42, Username: username},
		text:  text,
		store: map[string]interface{}{},
	}
}

func (f *fakeCtx) Sender() *tele.User          { return f.user }
func (f *fakeCtx) Chat() *tele.Chat            { return &tele.Chat{ID: f.user.ID} }
func (f *fakeCtx) Text() string                { return f.text }
func (f *fakeCtx) Callback() *tele.Callback    { return f.callback }
func (f *fakeCtx) Update() tele.Update         { return tele.Update{ID: 1, Callback: f.callback} }
func (f *fakeCtx) Get(k string) interface{}    { return f.store[k] }
func (f *fakeCtx) Set(k string, v interface{}) { f.store[k] = v }
func (f *fakeCtx) Respond(...*tele.CallbackResponse) error {
	f.responded++
	return nil
}

type fakeFSM struct {
	pending bool
	err     error
}

func (f fakeFSM) InProgress(int64) bool             { return f.pending }
func (f fakeFSM) ManagerHandler(tele.Context) error { return f.err }

type allowList map[string]bool

func (a allowList) Contains(name string) bool { return a[name] }

var errMarker = errors.New("marker")

func marker(tag *string, name string) tele.HandlerFunc {
	return func(tele.Context) error {
		*tag = name
		return nil
	}
}

func TestTextRoutesPriority(t *testing.T) {
	var hit string
	reg := tg.NewRegistry()
	if err := reg.RegisterCommand("/start", tg.Command{Handler: marker(&hit, "start"), Description: "d"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCommand("/admin", tg.Command{Handler: marker(&hit, "admin"), Description: "d", AdminOnly: true}); err != nil {
		t.Fatal(err)
	}
	opts := TextOptions{UnknownText: marker(&hit, "unknown")}

	pending := TextRoutes(fakeFSM{pending: true, err: errMarker}, reg, opts)[0].Handler
	if err := pending(newFakeCtx("u", "start")); !errors.Is(err, errMarker) {
		t.Fatalf("pending dialogue must take the text, got %v", err)
	}

	idle := TextRoutes(fakeFSM{}, reg, opts)[0].Handler
	cases := map[string]string{
		"start": "start",
		"admin": "unknown", // admin-only commands are never reachable as plain text
		"hello": "unknown",
	}
	for text, want := range cases {
		hit = ""
		if err := idle(newFakeCtx("u", text)); err != nil {
			t.Fatal(err)
		}
		if hit != want {
			t.Fatalf("text %q routed to %q, want %q", text, hit, want)
		}
	}

	reg.SetTextFallback(marker(&hit, "fallback"))
	hit = ""
	if err := idle(newFakeCtx("u", "hello")); err != nil || hit != "fallback" {
		t.Fatalf("expected registry fallback, got %q (%v)", hit, err)
	}
}

func TestCallbackRoute(t *testing.T) {
	var hit string
	reg := tg.NewRegistry()
	if err := reg.RegisterCallback("admin_view", marker(&hit, "view")); err != nil {
		t.Fatal(err)
	}
	route := CallbackRoute(reg, CallbackOptions{NotFound: marker(&hit, "missing")})
	if route.Endpoint != tele.OnCallback {
		t.Fatalf("unexpected endpoint %v", route.Endpoint)
	}

	c := newFakeCtx("u", "")
	c.callback = &tele.Callback{Data: "\fadmin_view"}
	if err := route.Handler(c); err != nil || hit != "view" || c.responded != 1 {
		t.Fatalf("known key: hit=%q responded=%d err=%v", hit, c.responded, err)
	}

	c = newFakeCtx("u", "")
	c.callback = &tele.Callback{Data: "\fstale|x"}
	if err := route.Handler(c); err != nil || hit != "missing" || c.responded != 0 {
		t.Fatalf("unknown key must go to the fallback unanswered: hit=%q responded=%d err=%v", hit, c.responded, err)
	}

	bare := CallbackRoute(tg.NewRegistry(), CallbackOptions{})
	c = newFakeCtx("u", "")
	c.callback = &tele.Callback{Data: "\fstale"}
	if err := bare.Handler(c); err != nil || c.responded != 1 {
		t.Fatalf("without a fallback the query must still be answered: responded=%d err=%v", c.responded, err)
	}
}

func TestCommandRoutesGuardAdminsAndBindAliases(t *testing.T) {
	var hit string
	reg := tg.NewRegistry()
	_ = reg.RegisterCommand("/start", tg.Command{Handler: marker(&hit, "start"), Description: "d", Aliases: []string{"menu"}})
	_ = reg.RegisterCommand("/admin", tg.Command{Handler: marker(&hit, "admin"), Description: "d", AdminOnly: true})

	routes := CommandRoutes(reg, CommandRouteOptions{
		Authorizer:    allowList{"boss": true},
		OnAdminReject: marker(&hit, "denied"),
	})
	byEndpoint := map[any]tele.HandlerFunc{}
	for _, r := range routes {
		byEndpoint[r.Endpoint] = r.Handler
	}
	if len(byEndpoint) != 3 || byEndpoint["/menu"] == nil {
		t.Fatalf("unexpected endpoints %v", byEndpoint)
	}

	_ = byEndpoint["/menu"](newFakeCtx("anyone", "/menu"))
	if hit != "start" {
		t.Fatalf("alias routed to %q", hit)
	}
	_ = byEndpoint["/admin"](newFakeCtx("anyone", "/admin"))
	if hit != "denied" {
		t.Fatalf("stranger reached %q", hit)
	}
	_ = byEndpoint["/admin"](newFakeCtx("boss", "/admin"))
	if hit != "admin" {
		t.Fatalf("admin reached %q", hit)
	}
}

func TestButtonRoutesSkipIncomplete(t *testing.T) {
	var hit string
	routes := ButtonRoutes([]TextButton{
		{Name: "calendar", Label: "📅 Календар", Handler: marker(&hit, "calendar")},
		{Name: "empty", Label: "", Handler: marker(&hit, "empty")},
		{Name: "nil", Label: "x"},
	})
	if len(routes) != 1 || routes[0].Endpoint != "📅 Календар" {
		t.Fatalf("unexpected routes %+v", routes)
	}
	if err := routes[0].Handler(newFakeCtx("u", "📅 Календар")); err != nil || hit != "calendar" {
		t.Fatalf("button not dispatched: %q %v", hit, err)
	}
}

func TestHelpers(t *testing.T) {
	if got := normalizeHandlerName(" /Admin Panel "); got != "admin_panel" {
		t.Fatalf("normalizeHandlerName = %q", got)
	}
	if got := previewKeys([]string{"a", "b", "c"}, 2); got != "a,b (+1)" {
		t.Fatalf("previewKeys = %q", got)
	}
	if got := previewKeys([]string{"a"}, 2); got != "a" {
		t.Fatalf("previewKeys = %q", got)
	}
	if got := deriveErrorCode(errMarker); got != "ERRORSTRING" {
		t.Fatalf("deriveErrorCode = %q", got)
	}
}
