// Package phoenix routes decoded channel messages to subscribers.
//
// A frame pushed by the server decodes to a map with the keys topic, event,
// payload and ref. The Router turns raw frames into Messages and hands each
// one to the handlers subscribed to its topic, then to every message
// callback. It does not own a socket: the caller feeds it frames.
package phoenix
