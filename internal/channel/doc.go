// Package channel carries named events between the preview and its hosts.
//
// A Channel is a bidirectional bus of "event name + payload" messages. Local
// is an in-process loopback bus. Server bridges the preview to hosts over
// socket.io, and Remote is the host side of that bridge.
package channel
