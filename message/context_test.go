package message_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fxsml/mediate/message"
)

// testLogger records log calls for assertions.
type testLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *testLogger) Debug(string, ...any) {}
func (l *testLogger) Info(string, ...any)  {}

func (l *testLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *testLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *testLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func (l *testLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

func fullEnvelope() message.Envelope {
	return message.Envelope{
		To:      message.NewAddress("addrA"),
		From:    message.NewAddress("addrFrom"),
		FaultTo: message.NewAddress("addrFault"),
		ReplyTo: message.NewAddress("addrReply"),
		Action:  "urn:action",
	}
}

func TestContext_ResolveEnvelopeFallback(t *testing.T) {
	t.Parallel()

	msg := message.NewContext(fullEnvelope(), nil)

	tests := []struct {
		key  string
		want string
	}{
		{message.PropTo, "addrA"},
		{message.PropFrom, "addrFrom"},
		{message.PropAction, "urn:action"},
		{message.PropFaultTo, "addrFault"},
		{message.PropReplyTo, "addrReply"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := msg.Resolve(tt.key)
			if !ok || v.String() != tt.want {
				t.Errorf("Resolve(%q) = %q, %v, want %q", tt.key, v.String(), ok, tt.want)
			}
		})
	}
}

func TestContext_ResolveStoreWins(t *testing.T) {
	t.Parallel()

	msg := message.NewContext(message.Envelope{To: message.NewAddress("addrA")}, nil)
	msg.Properties().Set("x", message.StringValue("custom"))

	if v, _ := msg.Resolve("To"); v.String() != "addrA" {
		t.Errorf("Resolve(To) = %q, want addrA", v.String())
	}

	msg.Properties().Set("To", message.StringValue("override"))
	if v, _ := msg.Resolve("To"); v.String() != "override" {
		t.Errorf("Resolve(To) = %q, want override", v.String())
	}
}

func TestContext_ResolveUnsetAndCaseSensitive(t *testing.T) {
	t.Parallel()

	msg := message.NewContext(message.Envelope{To: message.NewAddress("addrA")}, nil)

	for _, key := range []string{"From", "Action", "FaultTo", "ReplyTo", "to", "TO", "unknown"} {
		if v, ok := msg.Resolve(key); ok {
			t.Errorf("Resolve(%q) = %q, want absent", key, v.String())
		}
	}
}

func TestContext_EnvelopeReadOnly(t *testing.T) {
	t.Parallel()

	env := message.Envelope{To: message.NewAddress("addrA")}
	msg := message.NewContext(env, nil)

	env.To.URI = "mutated"
	msg.Envelope().To.URI = "mutated again"

	if v, _ := msg.Resolve("To"); v.String() != "addrA" {
		t.Errorf("Resolve(To) = %q, want addrA", v.String())
	}
	if to, ok := msg.To(); !ok || to.URI != "addrA" {
		t.Errorf("To() = %v, %v, want addrA", to, ok)
	}
}

func TestContext_IDs(t *testing.T) {
	t.Parallel()

	a := message.NewContext(message.Envelope{}, nil)
	b := message.NewContext(message.Envelope{}, nil)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID(), b.ID())
	}
	if len(a.ID()) != 36 {
		t.Errorf("expected UUID string, got %q", a.ID())
	}
}

func TestContext_Clone(t *testing.T) {
	t.Parallel()

	reg := message.NewRegistry()
	msg := message.NewContext(fullEnvelope(), reg)
	msg.Payload = []byte("body")
	msg.Properties().Set("x", message.StringValue("a"))

	c := msg.Clone()
	c.Payload[0] = 'B'
	c.Properties().Set("x", message.StringValue("b"))

	if string(msg.Payload) != "body" {
		t.Errorf("original payload changed: %q", msg.Payload)
	}
	if v, _ := msg.Properties().Get("x"); v.String() != "a" {
		t.Errorf("original property changed: %q", v.String())
	}
	if c.ID() != msg.ID() || c.Configuration() != reg {
		t.Error("clone must keep ID and configuration")
	}
	if v, _ := c.Resolve("ReplyTo"); v.String() != "addrReply" {
		t.Errorf("clone Resolve(ReplyTo) = %q", v.String())
	}
}
