package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestRetryTransportRetriesTimeouts(t *testing.T) {
	base := &scriptedTransport{errs: []error{timeoutErr{}, timeoutErr{}}}
	rt := &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/sendMessage", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, base.calls)
}

func TestRetryTransportStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("certificate signed by unknown authority")
	base := &scriptedTransport{errs: []error{permanent}}
	rt := &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/bot1:x/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, base.calls)
}

func TestBuildHTTPClientCoversLongPoll(t *testing.T) {
	c := BuildHTTPClient(HTTPClientOptions{Timeout: 10 * time.Second, LongPollTimeout: 50 * time.Second})
	assert.GreaterOrEqual(t, c.Timeout, 55*time.Second)

	c = BuildHTTPClient(HTTPClientOptions{})
	assert.Equal(t, defaultClientTimeout, c.Timeout)
	rt, ok := c.Transport.(*retryTransport)
	require.True(t, ok)
	assert.Equal(t, defaultRetryAttempts, rt.maxRetries)
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "LONGPOLL"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)
	assert.Equal(t, AllowedUpdates, lp.AllowedUpdates)

	wh, ok := BuildPoller(PollerOptions{
		RunMode: RunModeWebhook,
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook", SecretToken: "s3cret"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "s3cret", wh.SecretToken)
	assert.Equal(t, "https://bot.example.com/hook", wh.Endpoint.PublicURL)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/Show", testCommand("Show lists", false))
	reg.RegisterCommand("help", testCommand("no slash", false))
	hidden := testCommand("Hidden", true)
	hidden.Aliases = []string{"hidden-alias"}
	reg.RegisterCommand("/secret", hidden)
	reg.RegisterCommand("/show", testCommand("duplicate", false))

	key, cmd, ok := reg.LookupCommand("SHOW")
	require.True(t, ok)
	assert.Equal(t, "/show", key)
	assert.Equal(t, "Show lists", cmd.Description)

	_, _, ok = reg.LookupCommand("/help")
	assert.False(t, ok)

	key, _, ok = reg.LookupCommand("/hidden-alias")
	require.True(t, ok)
	assert.Equal(t, "/secret", key)

	visible := reg.ListCommands(true)
	require.Len(t, visible, 1)
	assert.Equal(t, "/show", visible[0].Text)
	assert.Len(t, reg.ListCommands(false), 2)

	require.NoError(t, reg.RegisterCallback("show", testCallback))
	require.Error(t, reg.RegisterCallback("show", testCallback))
	require.Error(t, reg.RegisterCallback("", testCallback))
	_, ok = reg.GetCallback("show")
	assert.True(t, ok)
	assert.Equal(t, []string{"show"}, reg.ListCallbacks())
}

func testCommand(description string, hidden bool) commands.Command {
	return commands.Command{
		Handler:     func(context.Context, botport.Update, string) error { return nil },
		Description: description,
		Hidden:      hidden,
	}
}

func testCallback(context.Context, botport.Update, string) error { return nil }
