package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInference struct {
	reply  string
	err    error
	prompt string
}

func (s *stubInference) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

func TestCleanReply(t *testing.T) {
	cases := []struct {
		name, raw, prompt, want string
		max                     int
	}{
		{"echo stripped", "What is 2+2? It is 4.", "What is 2+2?", "It is 4.", 1000},
		{"tokens removed", "<s>[INST] hi [/INST] Hello there</s>", "", "hi  Hello there", 1000},
		{"chatml", "<|im_start|><|assistant|>Sure<|im_end|><|endoftext|>", "", "Sure", 1000},
		{"truncated", "abcdefghij", "", "abcde...", 5},
		{"runes", "ééééé", "", "éé...", 2},
		{"short kept", "ok", "", "ok", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanReply(tc.raw, tc.prompt, tc.max))
		})
	}
}

func TestChatReply(t *testing.T) {
	inf := &stubInference{reply: "Explain photosynthesis. Plants turn light into sugar."}
	lim := &stubLimiter{allow: true}
	svc := NewChatService(inf, lim, 20, 1000, zerolog.Nop())

	got, err := svc.Reply(context.Background(), "u1", "  Explain photosynthesis. ")
	require.NoError(t, err)
	assert.Equal(t, "Plants turn light into sugar.", got)
	assert.Equal(t, "Explain photosynthesis.", inf.prompt)
	assert.Equal(t, []string{"chat:u1"}, lim.keys)
}

func TestChatReplyValidation(t *testing.T) {
	svc := NewChatService(&stubInference{}, nil, 0, 1000, zerolog.Nop())

	_, err := svc.Reply(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Reply(context.Background(), "u1", strings.Repeat("a", MaxChatMessageChars+1))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Reply(context.Background(), "u1", strings.Repeat("a", MaxChatMessageChars))
	assert.NoError(t, err)
}

func TestChatRateLimit(t *testing.T) {
	svc := NewChatService(&stubInference{reply: "x"}, &stubLimiter{allow: false}, 1, 1000, zerolog.Nop())
	_, err := svc.Reply(context.Background(), "u1", "hi")
	assert.ErrorIs(t, err, ErrRateLimited)

	// A broken limiter does not block the request.
	svc = NewChatService(&stubInference{reply: "x"}, &stubLimiter{err: errors.New("redis down")}, 1, 1000, zerolog.Nop())
	got, err := svc.Reply(context.Background(), "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestChatUpstreamError(t *testing.T) {
	svc := NewChatService(&stubInference{err: ErrUpstream}, nil, 0, 1000, zerolog.Nop())
	_, err := svc.Reply(context.Background(), "u1", "hi")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestExtractGeneratedText(t *testing.T) {
	cases := map[string]string{
		`[{"generated_text":"list"}]`:            "list",
		`{"generated_text":"object"}`:            "object",
		`{"data":["gradio"]}`:                    "gradio",
		`{"data":[{"generated_text":"nested"}]}`: "nested",
		`"quoted"`:                               "quoted",
		"  plain text reply \n":                  "plain text reply",
		`{"error":"model loading"}`:              `{"error":"model loading"}`,
	}
	for body, want := range cases {
		assert.Equal(t, want, extractGeneratedText([]byte(body)), body)
	}
}

func TestInferenceClient(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"generated_text":"hello back"}]`)
	}))
	defer srv.Close()

	c := NewInferenceClient(srv.URL, "tok", 5*time.Second, zerolog.Nop())
	got, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", got)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.JSONEq(t, `{"inputs":"hello"}`, gotBody)
}

func TestInferenceClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewInferenceClient(srv.URL, "", 5*time.Second, zerolog.Nop())
	_, err := c.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUpstream)
}
