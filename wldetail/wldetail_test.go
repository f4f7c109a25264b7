package wldetail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestErrors(t *testing.T) {
	var errs Errors
	qt.Assert(t, qt.IsNil(errs.Err()))
	errs = append(errs, errors.New("one"), errors.New("two\n"))
	qt.Assert(t, qt.ErrorMatches(errs.Err(), "one\ntwo"))
}

func TestDigest(t *testing.T) {
	qt.Assert(t, qt.Equals(DigestOf(nil).String(),
		"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"))
	qt.Assert(t, qt.Not(qt.Equals(DigestOf([]byte("a")), DigestOf([]byte("b")))))

	path := filepath.Join(t.TempDir(), "f")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("a"), 0666)))
	d, err := DigestFile(path)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(d, DigestOf([]byte("a"))))
}

func TestUpdateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.go")

	changed, err := WriteFileIfChanged(path, []byte("first"), 0666)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(changed))
	changed, err = WriteFileIfChanged(path, []byte("first"), 0666)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(changed))

	changed, err = WriteFileIfChanged(path, []byte("second"), 0666)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(changed))
	data, err := os.ReadFile(path)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(data), "second"))
	data, err = os.ReadFile(path + "~")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(data), "first"))
	_, err = os.Stat(path + ".lock")
	qt.Assert(t, qt.IsTrue(os.IsNotExist(err)))
}

func TestUpdateFileFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.go")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("keep"), 0666)))

	boom := errors.New("boom")
	err := UpdateFile(path, 0666, func(f *os.File) error {
		f.WriteString("partial")
		return boom
	})
	qt.Assert(t, qt.Equals(err, boom))
	data, _ := os.ReadFile(path)
	qt.Assert(t, qt.Equals(string(data), "keep"))
	_, err = os.Stat(path + ".lock")
	qt.Assert(t, qt.IsTrue(os.IsNotExist(err)))

	qt.Assert(t, qt.IsNil(os.WriteFile(path+".lock", nil, 0666)))
	_, err = WriteFileIfChanged(path, []byte("new"), 0666)
	qt.Assert(t, qt.ErrorIs(err, os.ErrExist))

	err = UpdateFile(dir, 0666, func(*os.File) error { return nil })
	qt.Assert(t, qt.ErrorMatches(err, ".*: is a directory"))
	qt.Assert(t, qt.Equals(UpdateFile("", 0666, nil), os.ErrInvalid))
}
