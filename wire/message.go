package wire

import (
	"fmt"
	"sync"
)

const (
	headerSize = 8
	// The size field of the header is 16 bits.
	maxMessageSize = 1<<16 - 1
)

// One message as it travels on the connection.  For events, Sender
// is the object the event is addressed from; for requests, it is the
// object the request is sent to.
type Message struct {
	Sender ObjectID
	Opcode uint16
	Data   []byte
	Fds    []int
}

// Returns the header and body of m as one byte slice.
func (m *Message) MarshalBinary() ([]byte, error) {
	size := headerSize + len(m.Data)
	if size > maxMessageSize {
		return nil, fmt.Errorf("message of %d bytes exceeds %d",
			size, maxMessageSize)
	} else if len(m.Data)&3 != 0 {
		return nil, fmt.Errorf("message body of %d bytes is not padded",
			len(m.Data))
	}
	out := make([]byte, 0, size)
	out = order.AppendUint32(out, uint32(m.Sender))
	out = order.AppendUint32(out, uint32(size)<<16|uint32(m.Opcode))
	return append(out, m.Data...), nil
}

// Parses a message header.  Returns the total message size including
// the header.
func parseHeader(b []byte) (sender ObjectID, opcode uint16, size int, err error) {
	if len(b) < headerSize {
		return 0, 0, 0, fmt.Errorf("short message header (%d bytes)", len(b))
	}
	sender = ObjectID(order.Uint32(b))
	word := order.Uint32(b[4:])
	opcode = uint16(word)
	size = int(word >> 16)
	if size < headerSize || size&3 != 0 {
		return 0, 0, 0, fmt.Errorf("bad message size %d", size)
	}
	return sender, opcode, size, nil
}

type queueKey struct {
	id     ObjectID
	opcode uint16
}

// Incoming messages waiting to be picked up by (object, opcode).
// Messages with the same key come out in arrival order.  The zero
// Queue is ready to use and safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	pending map[queueKey][]*Message
	n       int
}

func (q *Queue) Push(m *Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[queueKey][]*Message)
	}
	k := queueKey{m.Sender, m.Opcode}
	q.pending[k] = append(q.pending[k], m)
	q.n++
}

// Removes and returns the oldest message for (id, opcode), or nil.
func (q *Queue) Pop(id ObjectID, opcode uint16) *Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	k := queueKey{id, opcode}
	ms := q.pending[k]
	if len(ms) == 0 {
		return nil
	}
	m := ms[0]
	if len(ms) == 1 {
		delete(q.pending, k)
	} else {
		q.pending[k] = ms[1:]
	}
	q.n--
	return m
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Empties the queue, returning the file descriptors of the dropped
// messages so the caller can close them.
func (q *Queue) Drain() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	var fds []int
	for _, ms := range q.pending {
		for _, m := range ms {
			fds = append(fds, m.Fds...)
		}
	}
	q.pending = nil
	q.n = 0
	return fds
}
