package mqtt

// Handler is invoked once per delivered message. Delivery order across
// topics is not guaranteed.
type Handler func(topic string, payload []byte)

// PubSub is the message channel contract consumed by the core. Publish is
// fire-and-forget from the protocol's point of view: no delivery
// confirmation is surfaced beyond transport-level errors.
type PubSub interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, h Handler) error
	Unsubscribe(topic string) error
	Close()
}
