package message

// Context is the unit of work flowing through mediators. One Context exists
// per in-flight message and is never reused for another message.
//
// The envelope is fixed at construction; mediators read it through the
// accessor methods and change message state only through Properties.
type Context struct {
	// Payload is the message body as received by the ingestion layer.
	Payload []byte

	id       string
	envelope Envelope
	props    *Properties
	config   *Registry
}

// NewContext creates a Context for one message. The registry is shared,
// read-only configuration and may be nil for contexts that never look up
// sequences.
func NewContext(env Envelope, config *Registry) *Context {
	return &Context{
		id:       DefaultIDGenerator(),
		envelope: env.clone(),
		props:    NewProperties(),
		config:   config,
	}
}

// ID returns the message ID.
func (c *Context) ID() string {
	return c.id
}

// Properties returns the message property store.
func (c *Context) Properties() *Properties {
	return c.props
}

// Configuration returns the sequence registry the message is processed with.
func (c *Context) Configuration() *Registry {
	return c.config
}

// To returns the destination address.
func (c *Context) To() (Address, bool) {
	return addressOf(c.envelope.To)
}

// From returns the source address.
func (c *Context) From() (Address, bool) {
	return addressOf(c.envelope.From)
}

// FaultTo returns the fault destination address.
func (c *Context) FaultTo() (Address, bool) {
	return addressOf(c.envelope.FaultTo)
}

// ReplyTo returns the reply-to address.
func (c *Context) ReplyTo() (Address, bool) {
	return addressOf(c.envelope.ReplyTo)
}

// Action returns the addressing action.
func (c *Context) Action() (string, bool) {
	return c.envelope.Action, c.envelope.Action != ""
}

// Envelope returns a copy of the envelope.
func (c *Context) Envelope() Envelope {
	return c.envelope.clone()
}

// Resolve looks up key in the property store and falls back to the
// well-known envelope fields. Store values always take precedence; the
// envelope fallbacks are checked in the order To, From, Action, FaultTo,
// ReplyTo. Key names are matched case-sensitively.
func (c *Context) Resolve(key string) (Value, bool) {
	if v, ok := c.props.Get(key); ok {
		return v, true
	}

	if key == PropTo && c.envelope.To != nil {
		return StringValue(c.envelope.To.URI), true
	} else if key == PropFrom && c.envelope.From != nil {
		return StringValue(c.envelope.From.URI), true
	} else if key == PropAction && c.envelope.Action != "" {
		return StringValue(c.envelope.Action), true
	} else if key == PropFaultTo && c.envelope.FaultTo != nil {
		return StringValue(c.envelope.FaultTo.URI), true
	} else if key == PropReplyTo && c.envelope.ReplyTo != nil {
		return StringValue(c.envelope.ReplyTo.URI), true
	}
	return Value{}, false
}

// Clone returns a Context for a parallel branch of the same message. It keeps
// the ID, envelope and configuration, copies the payload and gets its own
// copy of the property scope stack.
func (c *Context) Clone() *Context {
	var payload []byte
	if c.Payload != nil {
		payload = append([]byte(nil), c.Payload...)
	}
	return &Context{
		Payload:  payload,
		id:       c.id,
		envelope: c.envelope.clone(),
		props:    c.props.Clone(),
		config:   c.config,
	}
}

func addressOf(a *Address) (Address, bool) {
	if a == nil {
		return Address{}, false
	}
	return *a, true
}
