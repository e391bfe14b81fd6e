package message_test

import (
	"math"
	"testing"

	"github.com/fxsml/mediate/message"
)

func TestValue_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    message.Value
		want string
	}{
		{"null", message.Null(), ""},
		{"string", message.StringValue("abc"), "abc"},
		{"integer", message.NumberValue(42), "42"},
		{"fraction", message.NumberValue(1.5), "1.5"},
		{"nan", message.NumberValue(math.NaN()), "NaN"},
		{"inf", message.NumberValue(math.Inf(1)), "Infinity"},
		{"-inf", message.NumberValue(math.Inf(-1)), "-Infinity"},
		{"bool", message.BoolValue(true), "true"},
		{"address", message.AddressValue(message.Address{URI: "urn:a"}), "urn:a"},
		{"expression", message.ExpressionValue("get-property('x')"), "get-property('x')"},
		{"opaque", message.OpaqueValue(7), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	t.Parallel()

	if n, ok := message.NumberValue(3).Number(); !ok || n != 3 {
		t.Errorf("Number() = %v, %v", n, ok)
	}
	if _, ok := message.StringValue("3").Number(); ok {
		t.Error("string value must not report a number")
	}
	if src, ok := message.ExpressionValue("x()").Expression(); !ok || src != "x()" {
		t.Errorf("Expression() = %q, %v", src, ok)
	}
	if a, ok := message.AddressValue(message.Address{URI: "u"}).Address(); !ok || a.URI != "u" {
		t.Errorf("Address() = %v, %v", a, ok)
	}
	if !message.OpaqueValue(nil).IsNull() {
		t.Error("OpaqueValue(nil) must be null")
	}
	if message.Null().Raw() != nil {
		t.Error("Null().Raw() must be nil")
	}
}

func TestValue_Equal(t *testing.T) {
	t.Parallel()

	if !message.StringValue("a").Equal(message.StringValue("a")) {
		t.Error("equal strings must be Equal")
	}
	if message.StringValue("1").Equal(message.NumberValue(1)) {
		t.Error("different variants must not be Equal")
	}
	if !message.OpaqueValue(map[string]int{"a": 1}).Equal(message.OpaqueValue(map[string]int{"a": 1})) {
		t.Error("deeply equal opaque values must be Equal")
	}
}
