package cloudevents

import (
	"errors"
	"fmt"
	"math"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/types"
	"github.com/fxsml/mediate/message"
)

// Extensions carrying the envelope addresses that have no CloudEvents
// context attribute of their own.
const (
	ExtTo      = "to"
	ExtReplyTo = "replyto"
	ExtFaultTo = "faultto"
)

// Context attributes copied between events and global properties.
const (
	AttrID              = "id"
	AttrSpecVersion     = "specversion"
	AttrSubject         = "subject"
	AttrTime            = "time"
	AttrDataContentType = "datacontenttype"
	AttrDataSchema      = "dataschema"
)

var (
	// ErrNilEvent is returned when converting a nil event.
	ErrNilEvent = errors.New("cloudevents: nil event")

	// ErrNoAction is returned when a message without an Action is converted
	// to an event.
	ErrNoAction = errors.New("cloudevents: no action to use as event type")
)

// FromCloudEvent converts e into a message context bound to config.
//
// The event type becomes the Action and the source becomes From. The to,
// replyto and faultto extensions fill the remaining envelope addresses.
// Every other attribute and extension is set as a global property, and
// the event data becomes the payload.
func FromCloudEvent(e *cloudevents.Event, config *message.Registry) (*message.Context, error) {
	if e == nil {
		return nil, ErrNilEvent
	}

	env := message.Envelope{Action: e.Type()}
	if src := e.Source(); src != "" {
		env.From = message.NewAddress(src)
	}

	exts := e.Extensions()
	env.To = extensionAddress(exts, ExtTo)
	env.ReplyTo = extensionAddress(exts, ExtReplyTo)
	env.FaultTo = extensionAddress(exts, ExtFaultTo)

	msg := message.NewContext(env, config)
	props := msg.Properties()

	props.Set(AttrID, message.StringValue(e.ID()))
	props.Set(AttrSpecVersion, message.StringValue(e.SpecVersion()))
	if s := e.Subject(); s != "" {
		props.Set(AttrSubject, message.StringValue(s))
	}
	if t := e.Time(); !t.IsZero() {
		props.Set(AttrTime, message.StringValue(t.UTC().Format(time.RFC3339)))
	}
	if ct := e.DataContentType(); ct != "" {
		props.Set(AttrDataContentType, message.StringValue(ct))
	}
	if ds := e.DataSchema(); ds != "" {
		props.Set(AttrDataSchema, message.StringValue(ds))
	}

	for k, v := range exts {
		switch k {
		case ExtTo, ExtReplyTo, ExtFaultTo:
			continue
		}
		props.Set(k, extensionValue(v))
	}

	if b := e.Data(); len(b) > 0 {
		msg.Payload = append([]byte(nil), b...)
	}
	return msg, nil
}

// ToCloudEvent converts msg into an event. Action is required and becomes
// the type; From becomes the source. Global properties with valid extension
// names are copied as extensions; properties of pushed scopes and
// unevaluated expressions are not. The property id, if present, is used as
// the event ID; otherwise the message ID is.
func ToCloudEvent(msg *message.Context) (*cloudevents.Event, error) {
	action, ok := msg.Action()
	if !ok {
		return nil, fmt.Errorf("message %s: %w", msg.ID(), ErrNoAction)
	}

	e := cloudevents.NewEvent()
	e.SetType(action)
	e.SetID(msg.ID())
	if from, ok := msg.From(); ok {
		e.SetSource(from.URI)
	}
	if to, ok := msg.To(); ok {
		e.SetExtension(ExtTo, to.URI)
	}
	if a, ok := msg.ReplyTo(); ok {
		e.SetExtension(ExtReplyTo, a.URI)
	}
	if a, ok := msg.FaultTo(); ok {
		e.SetExtension(ExtFaultTo, a.URI)
	}

	props := msg.Properties()
	var ct string
	for _, k := range props.GlobalKeys() {
		v, _ := props.GetGlobal(k)
		if v.Type() == message.TypeExpression {
			continue
		}
		switch k {
		case AttrID:
			e.SetID(v.String())
		case AttrSpecVersion:
			e.SetSpecVersion(v.String())
		case AttrSubject:
			e.SetSubject(v.String())
		case AttrTime:
			if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
				e.SetTime(t)
			}
		case AttrDataContentType:
			ct = v.String()
			e.SetDataContentType(ct)
		case AttrDataSchema:
			e.SetDataSchema(v.String())
		case ExtTo, ExtReplyTo, ExtFaultTo:
		default:
			if event.IsExtensionNameValid(k) {
				e.SetExtension(k, propertyExtension(v))
			}
		}
	}

	if msg.Payload != nil {
		if err := e.SetData(ct, msg.Payload); err != nil {
			return nil, fmt.Errorf("set data: %w", err)
		}
	}

	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("cloudevents: message %s: %w", msg.ID(), err)
	}
	return &e, nil
}

func extensionAddress(exts map[string]any, name string) *message.Address {
	v, ok := exts[name]
	if !ok {
		return nil
	}
	s, err := types.Format(v)
	if err != nil || s == "" {
		return nil
	}
	return message.NewAddress(s)
}

func extensionValue(v any) message.Value {
	switch v := v.(type) {
	case string:
		return message.StringValue(v)
	case int32:
		return message.NumberValue(float64(v))
	case bool:
		return message.BoolValue(v)
	}
	s, err := types.Format(v)
	if err != nil {
		return message.OpaqueValue(v)
	}
	return message.StringValue(s)
}

func propertyExtension(v message.Value) any {
	switch v.Type() {
	case message.TypeBool:
		b, _ := v.Bool()
		return b
	case message.TypeNumber:
		n, _ := v.Number()
		if n == math.Trunc(n) && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
	}
	return v.String()
}
