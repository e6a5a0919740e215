package phoenix

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/starfederation/packwire"
)

// Handler receives the messages of a subscribed topic.
type Handler func(Message)

type subscription struct {
	id      uint64
	event   string
	handler Handler
}

// Router dispatches decoded frames. It is safe for concurrent use.
type Router struct {
	envelope packwire.Envelope
	logger   zerolog.Logger

	mu        sync.RWMutex
	nextID    uint64
	channels  map[string][]subscription
	callbacks []subscription
}

// NewRouter returns a Router that decodes frames with envelope.
func NewRouter(logger zerolog.Logger, envelope packwire.Envelope) *Router {
	return &Router{
		envelope: envelope,
		logger:   logger.With().Str("component", "phoenix").Logger(),
		channels: make(map[string][]subscription),
	}
}

// Subscribe registers h for every message whose topic equals topic. The
// returned function removes the subscription.
func (r *Router) Subscribe(topic string, h Handler) func() {
	return r.SubscribeEvent(topic, "", h)
}

// SubscribeEvent registers h for messages on topic whose event equals
// event. An empty event matches every event. The returned function removes
// the subscription.
func (r *Router) SubscribeEvent(topic, event string, h Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.channels[topic] = append(r.channels[topic], subscription{id: id, event: event, handler: h})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		subs := r.channels[topic]
		for i := range subs {
			if subs[i].id == id {
				subs = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(subs) == 0 {
			delete(r.channels, topic)
			return
		}
		r.channels[topic] = subs
	}
}

// OnMessage registers h for every message, after the topic handlers ran.
func (r *Router) OnMessage(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.callbacks = append(r.callbacks, subscription{id: r.nextID, handler: h})
}

// HandleFrame decodes raw and dispatches the message it carries. Empty
// frames are ignored. A frame that cannot be decoded is logged and its
// error returned; nothing is dispatched for it.
func (r *Router) HandleFrame(raw []byte) error {
	msg, ok, err := r.Decode(raw)
	if err != nil {
		r.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("drop frame")
		return err
	}
	if !ok {
		return nil
	}
	r.Dispatch(msg)
	return nil
}

// Decode turns raw into a Message without dispatching it.
func (r *Router) Decode(raw []byte) (Message, bool, error) {
	plain, kind, err := r.envelope.Unwrap(raw)
	if err != nil {
		return Message{}, false, err
	}
	if kind == packwire.EnvelopeEmpty {
		return Message{}, false, nil
	}
	r.logger.Debug().
		Stringer("envelope", kind).
		Int("bytes", len(raw)).
		Int("plain_bytes", len(plain)).
		Msg("frame")
	v, err := r.envelope.DecodePlain(plain)
	if err != nil {
		return Message{}, false, err
	}
	msg, err := MessageFromValue(v)
	if err != nil {
		return Message{}, false, err
	}
	return msg, true, nil
}

// Dispatch hands msg to the matching topic handlers, in subscription order,
// and then to the message callbacks.
func (r *Router) Dispatch(msg Message) {
	ev := r.logger.Debug().
		Str("topic", msg.Topic).
		Str("event", msg.Event)
	if status := msg.Status(); status != "" {
		ev = ev.Str("status", status)
	}
	if msg.HasRef {
		ev = ev.Str("ref", msg.Ref)
	}
	ev.Msg("receive")

	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.channels[msg.Topic])+len(r.callbacks))
	for _, s := range r.channels[msg.Topic] {
		if s.event == "" || s.event == msg.Event {
			handlers = append(handlers, s.handler)
		}
	}
	for _, s := range r.callbacks {
		handlers = append(handlers, s.handler)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}
