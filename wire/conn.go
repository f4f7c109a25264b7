package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xdrpp/goxdr/xdr"
	"golang.org/x/sys/unix"
)

const (
	// The id of wl_display, which exists from the start.
	DisplayID ObjectID = 1

	firstClientID ObjectID = 2
	// Ids from 0xff000000 up belong to the server.
	lastClientID ObjectID = 0xfeffffff

	readChunk = 4096
	// Same limit as libwayland.
	maxFdsPerRead = 28
)

var ErrIDsExhausted = errors.New("wire: client object ids exhausted")

// Returns the path of the compositor socket named by
// $WAYLAND_DISPLAY (default wayland-0), relative to $XDG_RUNTIME_DIR
// unless it is absolute.
func DisplayPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", errors.New("wire: XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(dir, name), nil
}

// A Transport over a Unix stream socket.  File descriptors are passed
// with SCM_RIGHTS.  A Conn is safe for concurrent use.
type Conn struct {
	uc *net.UnixConn

	wmu    sync.Mutex
	nextID ObjectID

	rmu   sync.Mutex
	rbuf  []byte
	rfds  []int
	queue Queue

	emu sync.Mutex
	err error
}

var _ Transport = (*Conn)(nil)

// Connects to the compositor socket at path, or at DisplayPath() if
// path is empty.
func Dial(ctx context.Context, path string) (*Conn, error) {
	if path == "" {
		var err error
		if path, err = DisplayPath(); err != nil {
			return nil, err
		}
	}
	var d net.Dialer
	c, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return NewConn(c.(*net.UnixConn)), nil
}

func NewConn(uc *net.UnixConn) *Conn {
	return &Conn{uc: uc, nextID: firstClientID}
}

func (c *Conn) AllocateID() (ObjectID, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.nextID > lastClientID {
		return 0, ErrIDsExhausted
	}
	id := c.nextID
	c.nextID++
	return id, nil
}

func (c *Conn) SendRequest(owner ObjectID, opcode uint16, args ...xdr.XdrType) error {
	data, fds, err := Marshal(args...)
	if err != nil {
		return fmt.Errorf("wire: request %d of object %d: %w",
			opcode, owner, err)
	}
	return c.WriteMessage(&Message{
		Sender: owner,
		Opcode: opcode,
		Data:   data,
		Fds:    fds,
	})
}

// Writes one message, passing its file descriptors along with it.
func (c *Conn) WriteMessage(m *Message) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("wire: %w", err)
	}
	var oob []byte
	if len(m.Fds) > 0 {
		oob = unix.UnixRights(m.Fds...)
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	n, oobn, err := c.uc.WriteMsgUnix(b, oob, nil)
	if err != nil {
		return err
	} else if n != len(b) || oobn != len(oob) {
		return fmt.Errorf("wire: short write (n=%d oobn=%d)", n, oobn)
	}
	return nil
}

func (c *Conn) NextEvent(owner ObjectID, opcode uint16, payload xdr.XdrType) (bool, error) {
	m := c.queue.Pop(owner, opcode)
	if m == nil {
		return false, c.stickyErr()
	}
	if err := Unmarshal(m.Data, m.Fds, c, payload); err != nil {
		// Nobody owns the descriptors of an event that failed to
		// decode.
		for _, fd := range m.Fds {
			unix.Close(fd)
		}
		return false, fmt.Errorf("wire: event %d of object %d: %w",
			opcode, owner, err)
	}
	return true, nil
}

// Number of received messages not yet picked up by NextEvent.
func (c *Conn) Queued() int {
	return c.queue.Len()
}

func (c *Conn) stickyErr() error {
	c.emu.Lock()
	defer c.emu.Unlock()
	return c.err
}

func (c *Conn) fail(err error) error {
	c.emu.Lock()
	defer c.emu.Unlock()
	if c.err == nil {
		c.err = err
	}
	return c.err
}

// Reads from the socket until at least one more message is queued,
// then queues every complete message read so far.  A read or framing
// error is sticky: it is returned by every later Receive and, once
// the queue for an (object, opcode) pair is empty, by NextEvent.
//
// All descriptors that arrive with one read are attached to the
// first message completed by that read.
func (c *Conn) Receive(ctx context.Context) error {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	if err := c.stickyErr(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok {
		c.uc.SetReadDeadline(dl)
		defer c.uc.SetReadDeadline(time.Time{})
	}
	for {
		got, err := c.queueComplete()
		if err != nil {
			return c.fail(err)
		} else if got > 0 {
			return nil
		} else if err := ctx.Err(); err != nil {
			return err
		}

		buf := make([]byte, readChunk)
		oob := make([]byte, unix.CmsgSpace(maxFdsPerRead*4))
		n, oobn, _, _, err := c.uc.ReadMsgUnix(buf, oob)
		if oobn > 0 {
			fds, perr := parseRights(oob[:oobn])
			c.rfds = append(c.rfds, fds...)
			if perr != nil {
				return c.fail(perr)
			}
		}
		if n > 0 {
			c.rbuf = append(c.rbuf, buf[:n]...)
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return context.DeadlineExceeded
		} else if err != nil {
			return c.fail(err)
		} else if n == 0 && oobn == 0 {
			return c.fail(io.EOF)
		}
	}
}

func (c *Conn) queueComplete() (int, error) {
	got := 0
	for len(c.rbuf) >= headerSize {
		sender, opcode, size, err := parseHeader(c.rbuf)
		if err != nil {
			return got, err
		} else if len(c.rbuf) < size {
			break
		}
		c.queue.Push(&Message{
			Sender: sender,
			Opcode: opcode,
			Data:   append([]byte(nil), c.rbuf[headerSize:size]...),
			Fds:    c.rfds,
		})
		c.rfds = nil
		c.rbuf = c.rbuf[size:]
		got++
	}
	return got, nil
}

func parseRights(oob []byte) ([]int, error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("wire: parsing control message: %w", err)
	}
	var ret []int
	for i := range scms {
		if scms[i].Header.Level != unix.SOL_SOCKET ||
			scms[i].Header.Type != unix.SCM_RIGHTS {
			continue
		}
		fds, err := unix.ParseUnixRights(&scms[i])
		if err != nil {
			return ret, fmt.Errorf("wire: parsing unix rights: %w", err)
		}
		ret = append(ret, fds...)
	}
	return ret, nil
}

// Closes the socket and every received descriptor nobody decoded.
func (c *Conn) Close() error {
	c.fail(net.ErrClosed)
	err := c.uc.Close()
	c.rmu.Lock()
	fds := append(c.queue.Drain(), c.rfds...)
	c.rfds = nil
	c.rmu.Unlock()
	for _, fd := range fds {
		unix.Close(fd)
	}
	return err
}
