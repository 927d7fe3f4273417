package event

// Bus dispatches events to the handlers registered for their name, in
// registration order. It is not safe for concurrent use; a build stream is
// processed one line at a time.
type Bus struct {
	handlers map[Name][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[Name][]Handler)}
}

// On registers h for events called name
func (b *Bus) On(name Name, h Handler) {
	b.handlers[name] = append(b.handlers[name], h)
}

// handles reports whether at least one handler is registered for name
func (b *Bus) handles(name Name) bool {
	return len(b.handlers[name]) > 0
}

type notifyOptions struct {
	required bool
}

// NotifyOption configures a single Notify call.
type NotifyOption func(*notifyOptions)

// Required marks the event as one that must have a handler.
func Required() NotifyOption {
	return func(o *notifyOptions) {
		o.required = true
	}
}

// Notify delivers an event to every handler registered for name. Events
// without handlers are dropped unless Required is given, in which case a
// *MissingHandlerError is returned.
func (b *Bus) Notify(name Name, payload any, opts ...NotifyOption) error {
	var o notifyOptions
	for _, opt := range opts {
		opt(&o)
	}

	handlers := b.handlers[name]
	if len(handlers) == 0 {
		if o.required {
			return &MissingHandlerError{Event: name}
		}

		return nil
	}

	e := Event{Name: name, Payload: payload}
	for _, h := range handlers {
		if err := h(e); err != nil {
			return err
		}
	}

	return nil
}
