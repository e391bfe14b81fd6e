package cloudevents

import (
	"context"
	"errors"
	"testing"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/fxsml/mediate/message"
	"github.com/fxsml/mediate/message/expr"
)

func TestFromCloudEvent(t *testing.T) {
	t.Run("nil event returns error", func(t *testing.T) {
		if _, err := FromCloudEvent(nil, nil); !errors.Is(err, ErrNilEvent) {
			t.Fatalf("expected ErrNilEvent, got %v", err)
		}
	})

	t.Run("maps envelope and properties", func(t *testing.T) {
		event := cloudevents.NewEvent()
		event.SetID("test-id")
		event.SetType("order.created")
		event.SetSource("/orders")
		event.SetTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		event.SetSubject("order-1")
		event.SetDataSchema("https://example.com/schema")
		if err := event.SetData("application/json", []byte(`{"key":"value"}`)); err != nil {
			t.Fatalf("failed to set data: %v", err)
		}
		event.SetExtension(ExtTo, "urn:billing")
		event.SetExtension(ExtReplyTo, "urn:reply")
		event.SetExtension(ExtFaultTo, "urn:dlq")
		event.SetExtension("tenant", "acme")
		event.SetExtension("priority", 5)
		event.SetExtension("urgent", true)

		reg := message.NewRegistry()
		msg, err := FromCloudEvent(&event, reg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if msg.Configuration() != reg {
			t.Error("expected message bound to registry")
		}
		if a, _ := msg.Action(); a != "order.created" {
			t.Errorf("expected action 'order.created', got %q", a)
		}

		wantEnv := map[string]string{
			message.PropFrom:    "/orders",
			message.PropTo:      "urn:billing",
			message.PropReplyTo: "urn:reply",
			message.PropFaultTo: "urn:dlq",
		}
		for k, want := range wantEnv {
			if v, _ := msg.Resolve(k); v.String() != want {
				t.Errorf("Resolve(%s) = %q, want %q", k, v.String(), want)
			}
		}

		wantProps := map[string]string{
			AttrID:              "test-id",
			AttrSpecVersion:     "1.0",
			AttrSubject:         "order-1",
			AttrTime:            "2025-01-01T00:00:00Z",
			AttrDataContentType: "application/json",
			AttrDataSchema:      "https://example.com/schema",
			"tenant":            "acme",
			"priority":          "5",
			"urgent":            "true",
		}
		for k, want := range wantProps {
			if v, _ := msg.Properties().Get(k); v.String() != want {
				t.Errorf("property %s = %q, want %q", k, v.String(), want)
			}
		}
		if v, _ := msg.Properties().Get("priority"); v.Type() != message.TypeNumber {
			t.Errorf("expected integer extension as number, got %s", v.Type())
		}
		for _, k := range []string{ExtTo, ExtReplyTo, ExtFaultTo} {
			if _, ok := msg.Properties().Get(k); ok {
				t.Errorf("address extension %s must not become a property", k)
			}
		}

		if string(msg.Payload) != `{"key":"value"}` {
			t.Errorf("unexpected payload: %s", msg.Payload)
		}
	})

	t.Run("absent addresses stay unset", func(t *testing.T) {
		event := cloudevents.NewEvent()
		event.SetID("id")
		event.SetType("t")
		event.SetSource("/s")

		msg, err := FromCloudEvent(&event, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := msg.To(); ok {
			t.Error("expected To unset")
		}
		if msg.Payload != nil {
			t.Error("expected nil payload")
		}
	})
}

func TestToCloudEvent(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := cloudevents.NewEvent()
		in.SetID("evt-1")
		in.SetType("order.created")
		in.SetSource("/orders")
		in.SetSubject("order-1")
		in.SetExtension(ExtTo, "urn:billing")
		in.SetExtension("tenant", "acme")
		if err := in.SetData("text/plain", []byte("hello")); err != nil {
			t.Fatal(err)
		}

		msg, err := FromCloudEvent(&in, nil)
		if err != nil {
			t.Fatal(err)
		}
		msg.Properties().Set("count", message.NumberValue(3))
		msg.Properties().Set("Not_Valid", message.StringValue("skipped"))

		out, err := ToCloudEvent(msg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if out.ID() != "evt-1" || out.Type() != "order.created" || out.Source() != "/orders" {
			t.Errorf("unexpected context: %s", out)
		}
		if out.Subject() != "order-1" || out.DataContentType() != "text/plain" {
			t.Errorf("unexpected attributes: %s", out)
		}
		exts := out.Extensions()
		if exts[ExtTo] != "urn:billing" || exts["tenant"] != "acme" {
			t.Errorf("unexpected extensions: %v", exts)
		}
		if exts["count"] != int32(3) {
			t.Errorf("expected integer extension, got %#v", exts["count"])
		}
		if _, ok := exts["Not_Valid"]; ok {
			t.Error("invalid extension name must be skipped")
		}
		if string(out.Data()) != "hello" {
			t.Errorf("unexpected data: %s", out.Data())
		}
	})

	t.Run("only global properties inside a template", func(t *testing.T) {
		var out *cloudevents.Event
		var convErr error
		body := message.MediatorFunc(func(_ context.Context, msg *message.Context) (bool, error) {
			msg.Properties().Set("local", message.StringValue("scoped"))
			out, convErr = ToCloudEvent(msg)
			return true, nil
		})
		tmpl, err := message.NewTemplate("emit", []string{"secret", "lazy"}, body)
		if err != nil {
			t.Fatal(err)
		}
		reg := message.NewRegistry()
		if err := reg.Register("emit", tmpl); err != nil {
			t.Fatal(err)
		}

		inv, err := message.NewInvoke(message.InvokeConfig{
			Target: "emit",
			Arguments: []message.Argument{
				{Name: "secret", Expr: message.Literal("param")},
				{Name: "lazy", Expr: message.Deferred("get-property('x')")},
			},
			Evaluator: expr.New(expr.Config{}),
		})
		if err != nil {
			t.Fatal(err)
		}

		msg := message.NewContext(message.Envelope{From: message.NewAddress("/s"), Action: "t"}, reg)
		msg.Properties().Set("tenant", message.StringValue("acme"))
		msg.Properties().Set("pending", message.ExpressionValue("get-property('x')"))

		if ok, err := inv.Mediate(context.Background(), msg); !ok || err != nil {
			t.Fatalf("Mediate() = %v, %v", ok, err)
		}
		if convErr != nil {
			t.Fatal(convErr)
		}

		exts := out.Extensions()
		if exts["tenant"] != "acme" {
			t.Errorf("expected global tenant extension, got %v", exts)
		}
		for _, k := range []string{"secret", "lazy", "local", "pending"} {
			if _, ok := exts[k]; ok {
				t.Errorf("extension %q must not be exported: %v", k, exts)
			}
		}
	})

	t.Run("defaults ID to message ID", func(t *testing.T) {
		msg := message.NewContext(message.Envelope{From: message.NewAddress("/s"), Action: "t"}, nil)
		out, err := ToCloudEvent(msg)
		if err != nil {
			t.Fatal(err)
		}
		if out.ID() != msg.ID() {
			t.Errorf("ID = %q, want %q", out.ID(), msg.ID())
		}
	})

	t.Run("requires source", func(t *testing.T) {
		msg := message.NewContext(message.Envelope{Action: "t"}, nil)
		if _, err := ToCloudEvent(msg); err == nil {
			t.Error("expected validation error without source")
		}
	})
}
