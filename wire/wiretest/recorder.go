// Package wiretest provides an in-memory wire.Transport for testing
// generated bindings.
package wiretest

import (
	"fmt"
	"sync"

	"github.com/xdrpp/goxdr/xdr"

	"github.com/xdrpp/wlgen/wire"
)

// A wire.Transport that records every call, keeps sent requests in
// wire format, and serves events injected by the test.  Setting one
// of the error fields makes the corresponding call fail.
type Recorder struct {
	mu     sync.Mutex
	nextID wire.ObjectID
	log    []string
	sent   []*wire.Message
	queue  wire.Queue

	AllocErr error
	SendErr  error
	NextErr  error
}

var _ wire.Transport = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{nextID: wire.DisplayID + 1}
}

func (r *Recorder) logf(format string, args ...interface{}) {
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

func (r *Recorder) AllocateID() (wire.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AllocErr != nil {
		r.logf("allocate failed")
		return 0, r.AllocErr
	}
	id := r.nextID
	r.nextID++
	r.logf("allocate %d", id)
	return id, nil
}

func (r *Recorder) SendRequest(owner wire.ObjectID, opcode uint16,
	args ...xdr.XdrType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		r.logf("send %d/%d failed", owner, opcode)
		return r.SendErr
	}
	data, fds, err := wire.Marshal(args...)
	if err != nil {
		r.logf("send %d/%d failed", owner, opcode)
		return err
	}
	r.logf("send %d/%d", owner, opcode)
	r.sent = append(r.sent, &wire.Message{
		Sender: owner,
		Opcode: opcode,
		Data:   data,
		Fds:    fds,
	})
	return nil
}

func (r *Recorder) NextEvent(owner wire.ObjectID, opcode uint16,
	payload xdr.XdrType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NextErr != nil {
		r.logf("next %d/%d failed", owner, opcode)
		return false, r.NextErr
	}
	m := r.queue.Pop(owner, opcode)
	if m == nil {
		r.logf("next %d/%d none", owner, opcode)
		return false, nil
	}
	r.logf("next %d/%d", owner, opcode)
	if err := wire.Unmarshal(m.Data, m.Fds, r, payload); err != nil {
		return false, err
	}
	return true, nil
}

// Queues an event from object sender, encoded from args.
func (r *Recorder) Inject(sender wire.ObjectID, opcode uint16,
	args ...xdr.XdrType) error {
	data, fds, err := wire.Marshal(args...)
	if err != nil {
		return err
	}
	r.InjectRaw(&wire.Message{
		Sender: sender,
		Opcode: opcode,
		Data:   data,
		Fds:    fds,
	})
	return nil
}

// Queues an event exactly as given, e.g. a malformed one.
func (r *Recorder) InjectRaw(m *wire.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue.Push(m)
}

// Returns the calls made so far, one line each, e.g. "allocate 2" or
// "send 1/0".
func (r *Recorder) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

// Returns the requests sent so far.
func (r *Recorder) Sent() []*wire.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*wire.Message(nil), r.sent...)
}

// Returns the most recently sent request, or nil.
func (r *Recorder) Last() *wire.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return nil
	}
	return r.sent[len(r.sent)-1]
}
