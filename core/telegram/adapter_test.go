package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/telegram/botport"
	tgsender "github.com/m3rciful/todobot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

type apiCall struct {
	method string
	body   string
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	fail  map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, body: string(body)})
	failure := f.fail[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failure != "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, failure)
		return
	}
	switch method {
	case "answerCallbackQuery":
		_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":4242,"type":"private"},"text":"ok"}}`)
	}
}

func (f *fakeAPI) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func newTestAdapter(t *testing.T, sender *tgsender.Dispatcher) (*Adapter, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{fail: map[string]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := tele.NewBot(tele.Settings{
		URL:     srv.URL,
		Token:   "123456:test-token",
		Offline: true,
		Client:  srv.Client(),
	})
	require.NoError(t, err)
	return NewAdapter(bot, sender), api
}

func TestAdapterSendMessage(t *testing.T) {
	a, api := newTestAdapter(t, nil)
	msg, err := a.SendMessage(context.Background(), 4242, "hello", botport.Options{
		ParseMode: botport.ParseMarkdown,
		Keyboard:  botport.Keyboard{{{Text: "No list", Data: "show|null"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, botport.Message{ID: 77, ChatID: 4242}, msg)

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "sendMessage", calls[0].method)
	assert.Contains(t, calls[0].body, "4242")
	assert.Contains(t, calls[0].body, "hello")
	assert.Contains(t, calls[0].body, "show|null")
	assert.Contains(t, calls[0].body, "Markdown")
}

func TestAdapterEditMessage(t *testing.T) {
	a, api := newTestAdapter(t, tgsender.NewDispatcher(tgsender.Options{Workers: 1}))
	msg, err := a.EditMessage(context.Background(), 4242, 77, "edited", botport.Options{
		ReplyKeyboard: [][]string{{"/cancel"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 77, msg.ID)

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "editMessageText", calls[0].method)
	assert.Contains(t, calls[0].body, "edited")
	assert.NotContains(t, calls[0].body, "/cancel")

	_, err = a.EditMessage(context.Background(), 4242, 0, "edited", botport.Options{})
	require.Error(t, err)
}

func TestAdapterSendFailure(t *testing.T) {
	a, api := newTestAdapter(t, nil)
	api.fail["sendMessage"] = `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	_, err := a.SendMessage(context.Background(), 1, "hello", botport.Options{})
	require.Error(t, err)
}

func TestAdapterAnswerCallbackIsQueued(t *testing.T) {
	sender := tgsender.NewDispatcher(tgsender.Options{Workers: 1})
	a, api := newTestAdapter(t, sender)

	require.NoError(t, a.AnswerCallback(context.Background(), "cb-1", "Done"))
	require.NoError(t, a.AnswerCallback(context.Background(), "", "ignored"))
	sender.Close()

	require.Eventually(t, func() bool { return len(api.recorded()) == 1 }, time.Second, 10*time.Millisecond)
	call := api.recorded()[0]
	assert.Equal(t, "answerCallbackQuery", call.method)
	assert.Contains(t, call.body, "cb-1")
}
