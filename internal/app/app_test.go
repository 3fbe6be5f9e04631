package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/quizbot/core/config"
	tg "github.com/m3rciful/quizbot/core/telegram"
	"github.com/m3rciful/quizbot/internal/config"
	"github.com/m3rciful/quizbot/internal/dialogue"
	"github.com/m3rciful/quizbot/internal/menu"
	"github.com/m3rciful/quizbot/internal/settings"

	tele "gopkg.in/telebot.v4"
)

var (
	admin    = newUser(100, "nickskinner")
	stranger = newUser(200, "stranger")
	nameless = newUser(300, "")
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Telegram = coreconfig.TelegramConfig{Token: "123:abc", Admins: []string{"nickskinner"}}
	if err := config.Normalize(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(testConfig(), settings.NewStore(settings.Defaults()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func routeFor(t *testing.T, a *App, endpoint any) tele.HandlerFunc {
	t.Helper()
	for _, r := range a.Routes() {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	t.Fatalf("no route for %v", endpoint)
	return nil
}

func press(t *testing.T, a *App, user *tele.User, unique string) *fakeContext {
	t.Helper()
	c := callbackContext(user, unique)
	if err := routeFor(t, a, tele.OnCallback)(c); err != nil {
		t.Fatalf("callback %s: %v", unique, err)
	}
	return c
}

func typeText(t *testing.T, a *App, user *tele.User, text string) *fakeContext {
	t.Helper()
	c := textContext(user, text)
	if err := routeFor(t, a, tele.OnText)(c); err != nil {
		t.Fatalf("text %q: %v", text, err)
	}
	return c
}

func TestStartSendsWelcomeAndMainMenu(t *testing.T) {
	a := newTestApp(t)
	c := textContext(stranger, "/start")
	if err := routeFor(t, a, "/start")(c); err != nil {
		t.Fatal(err)
	}
	out := c.last()
	if !strings.Contains(out.text, "Ласкаво просимо") {
		t.Fatalf("unexpected welcome %q", out.text)
	}
	if out.markup == nil || len(out.markup.ReplyKeyboard) != 3 {
		t.Fatal("expected main keyboard")
	}
}

func TestAdminDeniedForStrangers(t *testing.T) {
	for _, user := range []*tele.User{stranger, nameless} {
		a := newTestApp(t)
		c := textContext(user, "/admin")
		if err := routeFor(t, a, "/admin")(c); err != nil {
			t.Fatal(err)
		}
		if got := c.last().text; got != menu.Denied().Text {
			t.Fatalf("expected denial, got %q", got)
		}
		if a.fsm.Sessions() != 0 {
			t.Fatal("denied user must not get dialogue state")
		}
		if a.store.All() != settings.Defaults() {
			t.Fatal("settings changed")
		}
	}
}

func TestAdminPanelForAdmins(t *testing.T) {
	a := newTestApp(t)
	c := textContext(admin, "/admin")
	if err := routeFor(t, a, "/admin")(c); err != nil {
		t.Fatal(err)
	}
	out := c.last()
	if out.text != menu.AdminPanel().Text || len(out.markup.InlineKeyboard) != 8 {
		t.Fatalf("unexpected panel %+v", out)
	}
}

func TestChangeCardFlow(t *testing.T) {
	a := newTestApp(t)

	prompt := press(t, a, admin, menu.AdminCard)
	if out := prompt.last(); !out.edited || !strings.Contains(out.text, "Введіть новий номер картки") {
		t.Fatalf("unexpected prompt %+v", out)
	}
	if a.dialogue.Current(admin.ID) != dialogue.AwaitingCard {
		t.Fatalf("state = %s", a.dialogue.Current(admin.ID))
	}

	reply := typeText(t, a, admin, "1111 2222 3333 4444")
	if got := a.store.All().PaymentCard; got != "1111 2222 3333 4444" {
		t.Fatalf("payment card = %q", got)
	}
	if a.dialogue.Current(admin.ID) != dialogue.Idle {
		t.Fatal("expected idle after input")
	}
	if !strings.Contains(reply.last().text, "<code>1111 2222 3333 4444</code>") {
		t.Fatalf("unexpected confirmation %q", reply.last().text)
	}
}

func TestCharityFlowNeedsTwoInputs(t *testing.T) {
	a := newTestApp(t)
	press(t, a, admin, menu.AdminCharity)

	typeText(t, a, admin, "https://example.org/jar")
	if a.dialogue.Current(admin.ID) != dialogue.AwaitingCharityDescription {
		t.Fatalf("state = %s", a.dialogue.Current(admin.ID))
	}
	typeText(t, a, admin, "Generators")
	all := a.store.All()
	if all.CharityLink != "https://example.org/jar" || all.CharityDescription != "Generators" {
		t.Fatalf("unexpected settings %+v", all)
	}
	if a.dialogue.Current(admin.ID) != dialogue.Idle {
		t.Fatal("expected idle")
	}
}

func TestEmptyInputReprompts(t *testing.T) {
	a := newTestApp(t)
	press(t, a, admin, menu.AdminGame)
	c := typeText(t, a, admin, "   ")
	if !strings.HasPrefix(c.last().text, "⚠️") {
		t.Fatalf("expected re-prompt, got %q", c.last().text)
	}
	if a.dialogue.Current(admin.ID) != dialogue.AwaitingGameLink {
		t.Fatal("state must be kept on empty input")
	}
}

func TestStrangerCannotPressAdminButtons(t *testing.T) {
	a := newTestApp(t)
	c := press(t, a, stranger, menu.AdminCard)
	if c.last().text != menu.Denied().Text {
		t.Fatalf("expected denial, got %q", c.last().text)
	}
	if a.fsm.Sessions() != 0 {
		t.Fatal("stranger must not enter the dialogue")
	}
}

func TestBackResetsPendingEdit(t *testing.T) {
	a := newTestApp(t)
	press(t, a, admin, menu.AdminCalendar)
	c := press(t, a, admin, menu.AdminBack)
	if a.dialogue.Pending(admin.ID) {
		t.Fatal("back must drop the pending edit")
	}
	if len(c.out) != 2 || !c.out[0].edited || c.out[1].text != menu.BackToMain().Text {
		t.Fatalf("unexpected output %+v", c.out)
	}

	typeText(t, a, admin, "https://late.example")
	if a.store.All().CalendarLink != settings.Defaults().CalendarLink {
		t.Fatal("text after back must not change settings")
	}
}

func TestCancel(t *testing.T) {
	a := newTestApp(t)
	press(t, a, admin, menu.AdminModerator)
	c := textContext(admin, "/cancel")
	if err := routeFor(t, a, "/cancel")(c); err != nil {
		t.Fatal(err)
	}
	if a.dialogue.Pending(admin.ID) {
		t.Fatal("cancel must drop the pending edit")
	}
	if c.last().text != menu.Cancelled(true).Text {
		t.Fatalf("unexpected reply %q", c.last().text)
	}

	cb := press(t, a, admin, menu.AdminCancel)
	if !cb.last().edited || cb.last().text != menu.Cancelled(false).Text {
		t.Fatalf("unexpected inline cancel reply %+v", cb.last())
	}
}

func TestViewSettings(t *testing.T) {
	a := newTestApp(t)
	c := press(t, a, admin, menu.AdminView)
	if c.last().text != menu.SettingsDump(settings.Defaults()).Text {
		t.Fatalf("unexpected dump %q", c.last().text)
	}
}

func TestMainMenuButtonDeletesAndReplies(t *testing.T) {
	a := newTestApp(t)
	c := textContext(stranger, menu.Calendar.Label)
	c.deleteErr = errors.New("message can't be deleted")
	if err := routeFor(t, a, menu.Calendar.Label)(c); err != nil {
		t.Fatalf("delete failure must be ignored: %v", err)
	}
	if c.deleted != 1 {
		t.Fatalf("expected one delete, got %d", c.deleted)
	}
	out := c.last()
	if out.markup == nil || out.markup.InlineKeyboard[0][0].URL != settings.Defaults().CalendarLink {
		t.Fatalf("expected calendar link button, got %+v", out)
	}
}

func TestUnknownTextGetsHint(t *testing.T) {
	a := newTestApp(t)
	c := typeText(t, a, stranger, "hello")
	if c.last().text != menu.MainMenuHint().Text {
		t.Fatalf("unexpected reply %q", c.last().text)
	}
}

func TestUnknownCallbackIsAnswered(t *testing.T) {
	a := newTestApp(t)
	c := press(t, a, admin, "stale_button")
	if len(c.responded) != 1 || c.responded[0].Text == "" {
		t.Fatalf("expected a callback answer, got %+v", c.responded)
	}
}

func TestRemovedAdminCannotFinishEdit(t *testing.T) {
	a := newTestApp(t)
	// A stranger can only reach a pending state through a direct Begin.
	if err := a.dialogue.Begin(context.Background(), stranger.ID, dialogue.AwaitingCard); err != nil {
		t.Fatal(err)
	}
	typeText(t, a, stranger, "0000")
	if a.store.All().PaymentCard != settings.Defaults().PaymentCard {
		t.Fatal("non-admin input changed settings")
	}
	if a.dialogue.Pending(stranger.ID) {
		t.Fatal("non-admin pending state must be dropped")
	}
}

func TestTelegramRunOptions(t *testing.T) {
	a := newTestApp(t)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Config != a.cfg.CoreConfig() || opts.Registry == nil || len(opts.Routes) == 0 {
		t.Fatalf("incomplete options %+v", opts)
	}
	if err := opts.OnStart(context.Background(), tg.Runtime{Registry: opts.Registry}); err != nil {
		t.Fatal(err)
	}
	visible := opts.Registry.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Fatalf("only /start should be public, got %+v", visible)
	}
}

func TestBootstrapAppliesDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Defaults.PaymentCard = "9999"
	a, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if a.store.All().PaymentCard != "9999" {
		t.Fatalf("default override not applied: %q", a.store.All().PaymentCard)
	}
}
