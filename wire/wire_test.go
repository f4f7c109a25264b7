package wire

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
	"github.com/xdrpp/goxdr/xdr"
	"golang.org/x/sys/unix"
)

func words(ws ...uint32) []byte {
	var out []byte
	for _, w := range ws {
		out = order.AppendUint32(out, w)
	}
	return out
}

func cat(bs ...[]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

type sample struct {
	Text  String
	Count int32
	Blob  []byte
	File  Fd
}

func (sample) XdrTypeName() string       { return "sample" }
func (v *sample) XdrPointer() interface{} { return v }
func (v sample) XdrValue() interface{}    { return v }
func (v *sample) XdrMarshal(x xdr.XDR, name string) { x.Marshal(name, v) }
func (v *sample) XdrRecurse(x xdr.XDR, name string) {
	if name != "" {
		name = x.Sprintf("%s.", name)
	}
	x.Marshal(x.Sprintf("%stext", name), &v.Text)
	x.Marshal(x.Sprintf("%scount", name), xdr.XDR_int32(&v.Count))
	x.Marshal(x.Sprintf("%sblob", name), Bytes(&v.Blob))
	x.Marshal(x.Sprintf("%sfile", name), &v.File)
}

func TestMarshalScalars(t *testing.T) {
	n := int32(-2)
	u := uint32(7)
	id := ObjectID(9)
	f := FixedFromFloat(1.5)
	data, fds, err := Marshal(xdr.XDR_int32(&n), xdr.XDR_uint32(&u), &id, &f)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(fds, 0))
	qt.Assert(t, qt.DeepEquals(data, words(0xfffffffe, 7, 9, 384)))
}

func TestMarshalStrings(t *testing.T) {
	data, _, err := Marshal(Str("hi"), OptStr(nil), Str(""))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(data, cat(
		words(3), []byte{'h', 'i', 0, 0},
		words(0),
		words(1), []byte{0, 0, 0, 0},
	)))

	s := "four"
	data, _, err = Marshal(OptStr(&s))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(data, cat(words(5),
		[]byte{'f', 'o', 'u', 'r', 0, 0, 0, 0})))
}

func TestMarshalArrayAndFd(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	fd := Fd(9)
	data, fds, err := Marshal(Bytes(&b), &fd)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(data, cat(words(5), []byte{1, 2, 3, 4, 5, 0, 0, 0})))
	qt.Assert(t, qt.DeepEquals(fds, []int{9}))

	big := make([]byte, MaxArray+1)
	_, _, err = Marshal(Bytes(&big))
	qt.Assert(t, qt.ErrorMatches(err, `arg0: \d+ bytes exceed bound \d+`))
}

func TestMarshalNewObject(t *testing.T) {
	data, _, err := Marshal(&NewObject{Interface: "friend", Version: 2, ID: 5})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(data, cat(
		words(7), []byte{'f', 'r', 'i', 'e', 'n', 'd', 0, 0},
		words(2, 5),
	)))
}

func TestFixed(t *testing.T) {
	qt.Assert(t, qt.Equals(FixedFromFloat(1.5), Fixed(384)))
	qt.Assert(t, qt.Equals(FixedFromFloat(-2.25), Fixed(-576)))
	qt.Assert(t, qt.Equals(FixedFromInt(3), Fixed(768)))
	qt.Assert(t, qt.Equals(Fixed(384).Float(), 1.5))
	qt.Assert(t, qt.Equals(Fixed(-576).Float(), -2.25))
	qt.Assert(t, qt.Equals(Fixed(-576).Int(), -2))
	qt.Assert(t, qt.Equals(Fixed(-576).String(), "-2.25"))
}

func TestUnmarshal(t *testing.T) {
	data := cat(
		words(6), []byte("hello\x00\x00\x00"),
		words(0xffffffff),
		words(2), []byte{7, 8, 0, 0},
	)
	var v sample
	err := Unmarshal(data, []int{11}, nil, &v)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(v, sample{
		Text:  "hello",
		Count: -1,
		Blob:  []byte{7, 8},
		File:  11,
	}))
}

func TestUnmarshalNullString(t *testing.T) {
	var v sample
	v.Text = "stale"
	err := Unmarshal(words(0, 0, 0), []int{3}, nil, &v)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.Text, String("")))
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		about string
		data  []byte
		fds   []int
		err   string
	}{{
		about: "truncated string",
		data:  cat(words(10), []byte("abcd")),
		fds:   []int{1},
		err:   "text: message truncated",
	}, {
		about: "missing terminator",
		data:  cat(words(2), []byte("ab\x00\x00"), words(0, 0)),
		fds:   []int{1},
		err:   "text: string not NUL-terminated",
	}, {
		about: "truncated integer",
		data:  words(0),
		fds:   []int{1},
		err:   "count: message truncated",
	}, {
		about: "oversized array",
		data:  words(0, 0, MaxArray+1),
		fds:   []int{1},
		err:   `blob: \d+ bytes exceed bound \d+`,
	}, {
		about: "missing descriptor",
		data:  words(0, 0, 0),
		err:   "file: missing file descriptor",
	}, {
		about: "trailing bytes",
		data:  words(0, 0, 0, 0),
		fds:   []int{1},
		err:   "4 trailing bytes after sample",
	}, {
		about: "extra descriptors",
		data:  words(0, 0, 0),
		fds:   []int{1, 2},
		err:   "1 unused file descriptors after sample",
	}}
	for _, test := range tests {
		t.Run(test.about, func(t *testing.T) {
			var v sample
			err := Unmarshal(test.data, test.fds, nil, &v)
			qt.Assert(t, qt.ErrorMatches(err, test.err))
		})
	}
}

func TestDump(t *testing.T) {
	v := sample{Text: "hi", Count: -3, Blob: []byte{1, 2}, File: 4}
	qt.Assert(t, qt.Equals(Dump(&v), "text: \"hi\"\ncount: -3\nblob: 0102\nfile: fd:4\n"))
}

func TestMessageHeader(t *testing.T) {
	m := &Message{Sender: 1, Opcode: 2, Data: words(42)}
	b, err := m.MarshalBinary()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(b, words(1, 12<<16|2, 42)))

	sender, opcode, size, err := parseHeader(b)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(sender, ObjectID(1)))
	qt.Assert(t, qt.Equals(opcode, uint16(2)))
	qt.Assert(t, qt.Equals(size, 12))

	_, err = (&Message{Data: []byte{1, 2, 3}}).MarshalBinary()
	qt.Assert(t, qt.ErrorMatches(err, "message body of 3 bytes is not padded"))
	_, err = (&Message{Data: make([]byte, maxMessageSize)}).MarshalBinary()
	qt.Assert(t, qt.ErrorMatches(err, `message of \d+ bytes exceeds 65535`))

	_, _, _, err = parseHeader(b[:5])
	qt.Assert(t, qt.ErrorMatches(err, `short message header \(5 bytes\)`))
	_, _, _, err = parseHeader(words(1, 6<<16))
	qt.Assert(t, qt.ErrorMatches(err, "bad message size 6"))
}

func TestQueue(t *testing.T) {
	var q Queue
	qt.Assert(t, qt.IsNil(q.Pop(1, 0)))
	first := &Message{Sender: 3, Opcode: 1, Fds: []int{7}}
	second := &Message{Sender: 3, Opcode: 1}
	other := &Message{Sender: 3, Opcode: 0, Fds: []int{8}}
	q.Push(first)
	q.Push(other)
	q.Push(second)
	qt.Assert(t, qt.Equals(q.Len(), 3))
	qt.Assert(t, qt.Equals(q.Pop(3, 1), first))
	qt.Assert(t, qt.IsNil(q.Pop(4, 1)))
	qt.Assert(t, qt.Equals(q.Pop(3, 1), second))
	qt.Assert(t, qt.IsNil(q.Pop(3, 1)))
	qt.Assert(t, qt.Equals(q.Len(), 1))
	qt.Assert(t, qt.DeepEquals(q.Drain(), []int{8}))
	qt.Assert(t, qt.Equals(q.Len(), 0))
}

func TestDisplayPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")
	p, err := DisplayPath()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(p, "/run/user/1000/wayland-0"))

	t.Setenv("WAYLAND_DISPLAY", "/tmp/sock")
	p, err = DisplayPath()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(p, "/tmp/sock"))

	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	t.Setenv("XDG_RUNTIME_DIR", "")
	_, err = DisplayPath()
	qt.Assert(t, qt.ErrorMatches(err, "wire: XDG_RUNTIME_DIR is not set"))
}

func connPair(t *testing.T) (*Conn, *Conn) {
	fds, err := unix.Socketpair(unix.AF_UNIX,
		unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	qt.Assert(t, qt.IsNil(err))
	mk := func(fd int) *Conn {
		f := os.NewFile(uintptr(fd), "wayland-test")
		defer f.Close()
		nc, err := net.FileConn(f)
		qt.Assert(t, qt.IsNil(err))
		return NewConn(nc.(*net.UnixConn))
	}
	a, b := mk(fds[0]), mk(fds[1])
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestConnAllocateID(t *testing.T) {
	conn, _ := connPair(t)
	id, err := conn.AllocateID()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(id, ObjectID(2)))
	id, err = conn.AllocateID()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(id, ObjectID(3)))

	conn.nextID = lastClientID
	id, err = conn.AllocateID()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(id, lastClientID))
	_, err = conn.AllocateID()
	qt.Assert(t, qt.Equals(err, ErrIDsExhausted))
}

func TestConnRoundTrip(t *testing.T) {
	client, server := connPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	qt.Assert(t, qt.IsNil(client.SendRequest(5, 2, Str("yo"))))
	qt.Assert(t, qt.IsNil(client.SendRequest(5, 2, Str("again"))))
	for server.Queued() < 2 {
		qt.Assert(t, qt.IsNil(server.Receive(ctx)))
	}

	var got []String
	for {
		var s String
		ok, err := server.NextEvent(5, 2, &s)
		qt.Assert(t, qt.IsNil(err))
		if !ok {
			break
		}
		got = append(got, s)
	}
	qt.Assert(t, qt.DeepEquals(got, []String{"yo", "again"}))
}

func TestConnPassesDescriptors(t *testing.T) {
	client, server := connPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, w, err := os.Pipe()
	qt.Assert(t, qt.IsNil(err))
	defer r.Close()
	defer w.Close()

	blob := []byte{1, 2, 3}
	count := int32(4)
	fd := Fd(r.Fd())
	qt.Assert(t, qt.IsNil(server.SendRequest(3, 1, Str("note"), xdr.XDR_int32(&count),
		Bytes(&blob), &fd)))

	var v sample
	ok, err := client.NextEvent(3, 1, &v)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(ok))

	qt.Assert(t, qt.IsNil(client.Receive(ctx)))
	qt.Assert(t, qt.Equals(client.Queued(), 1))
	ok, err = client.NextEvent(3, 1, &v)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(v.Text, String("note")))
	qt.Assert(t, qt.Equals(v.Count, int32(4)))
	qt.Assert(t, qt.DeepEquals(v.Blob, blob))
	qt.Assert(t, qt.Not(qt.Equals(v.File, fd)))

	got := os.NewFile(uintptr(v.File), "received")
	defer got.Close()
	_, err = w.Write([]byte("x"))
	qt.Assert(t, qt.IsNil(err))
	buf := make([]byte, 1)
	_, err = io.ReadFull(got, buf)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(buf), "x"))
}

func TestConnBadEvent(t *testing.T) {
	client, server := connPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, w, err := os.Pipe()
	qt.Assert(t, qt.IsNil(err))
	defer w.Close()
	qt.Assert(t, qt.IsNil(server.WriteMessage(&Message{Sender: 3, Opcode: 1,
		Data: cat(words(2), []byte("ab\x00\x00")),
		Fds:  []int{int(r.Fd())}})))
	// The descriptor in flight keeps the pipe's read end open.
	qt.Assert(t, qt.IsNil(r.Close()))

	qt.Assert(t, qt.IsNil(client.Receive(ctx)))
	var v sample
	ok, err := client.NextEvent(3, 1, &v)
	qt.Assert(t, qt.IsFalse(ok))
	qt.Assert(t, qt.ErrorMatches(err, "wire: event 1 of object 3: text: string not NUL-terminated"))

	// The received descriptor was closed, so the pipe has no reader.
	_, err = w.Write([]byte("x"))
	qt.Assert(t, qt.ErrorIs(err, unix.EPIPE))
}

func TestConnReceiveDeadline(t *testing.T) {
	client, server := connPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.Receive(ctx)
	qt.Assert(t, qt.IsTrue(errors.Is(err, context.DeadlineExceeded)))

	qt.Assert(t, qt.IsNil(server.WriteMessage(&Message{Sender: 3})))
	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	qt.Assert(t, qt.IsNil(client.Receive(ctx2)))
	qt.Assert(t, qt.Equals(client.Queued(), 1))
}

func TestConnCloseDuringReceive(t *testing.T) {
	client, _ := connPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- client.Receive(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	qt.Assert(t, qt.IsNil(client.Close()))
	qt.Assert(t, qt.ErrorIs(<-done, net.ErrClosed))
	qt.Assert(t, qt.ErrorIs(client.Receive(ctx), net.ErrClosed))
}

func TestConnPeerClosed(t *testing.T) {
	client, server := connPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	qt.Assert(t, qt.IsNil(server.WriteMessage(&Message{Sender: 3, Data: words(9)})))
	qt.Assert(t, qt.IsNil(server.Close()))
	qt.Assert(t, qt.IsNil(client.Receive(ctx)))
	qt.Assert(t, qt.ErrorIs(client.Receive(ctx), io.EOF))
	qt.Assert(t, qt.ErrorIs(client.Receive(ctx), io.EOF))

	// Queued events stay readable after the error.
	var id ObjectID
	ok, err := client.NextEvent(3, 0, &id)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(id, ObjectID(9)))
	ok, err = client.NextEvent(3, 0, &id)
	qt.Assert(t, qt.IsFalse(ok))
	qt.Assert(t, qt.ErrorIs(err, io.EOF))
}
