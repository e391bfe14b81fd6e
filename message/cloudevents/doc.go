// Package cloudevents connects mediation to the CloudEvents SDK.
//
// [FromCloudEvent] and [ToCloudEvent] map between events and message
// contexts:
//
//	type             ↔ Action
//	source           ↔ From
//	to extension     ↔ To
//	replyto          ↔ ReplyTo
//	faultto          ↔ FaultTo
//	other attributes ↔ global properties
//	data             ↔ Payload
//
// [Subscriber] wraps a protocol.Receiver and finishes every event with the
// result of its mediation. [Publisher] wraps a protocol.Sender and is itself
// a mediator, so sending can be a step of a sequence:
//
//	p, _ := cehttp.New(cehttp.WithPort(8080))
//	sub := cloudevents.NewSubscriber(p, registry, cloudevents.SubscriberConfig{})
//	err := sub.Run(ctx, engine.Mediate)
package cloudevents
