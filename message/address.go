package message

// Address is an endpoint reference carried in the message envelope.
type Address struct {
	URI string
}

// NewAddress returns a pointer to an Address for use in Envelope literals.
func NewAddress(uri string) *Address {
	return &Address{URI: uri}
}

func (a Address) String() string {
	return a.URI
}

// Envelope holds the addressing fields set by the ingestion layer.
// Nil addresses and an empty Action mean "not set".
type Envelope struct {
	To      *Address
	From    *Address
	FaultTo *Address
	ReplyTo *Address
	Action  string
}

// Reserved property names that resolve to envelope fields when no property
// of the same name is set.
const (
	// PropTo resolves to the destination address.
	PropTo = "To"
	// PropFrom resolves to the source address.
	PropFrom = "From"
	// PropAction resolves to the addressing action.
	PropAction = "Action"
	// PropFaultTo resolves to the fault destination address.
	PropFaultTo = "FaultTo"
	// PropReplyTo resolves to the reply-to address.
	PropReplyTo = "ReplyTo"
)

func (e Envelope) clone() Envelope {
	return Envelope{
		To:      copyAddress(e.To),
		From:    copyAddress(e.From),
		FaultTo: copyAddress(e.FaultTo),
		ReplyTo: copyAddress(e.ReplyTo),
		Action:  e.Action,
	}
}

func copyAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
