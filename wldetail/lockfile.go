package wldetail

import (
	"bytes"
	"os"
)

type ErrIsDirectory string

func (e ErrIsDirectory) Error() string {
	return string(e) + ": is a directory"
}

// Updates a file in a safe way, by first writing data to an
// exclusively created lockfile (which is path with ".lock" appended).
// If the action function returns a nil error, then the file is
// flushed and renamed to path, and any previous contents are kept in
// path with "~" appended.  This is the same scheme git uses to
// lock configuration files.
func UpdateFile(path string, perm os.FileMode,
	action func(*os.File) error) (err error) {
	if path == "" {
		return os.ErrInvalid
	} else if fi, e := os.Stat(path); e != nil && !os.IsNotExist(e) {
		return e
	} else if e == nil && fi.Mode().IsDir() {
		return ErrIsDirectory(path)
	}

	lockpath := path + ".lock"
	var f *os.File
	f, err = os.OpenFile(lockpath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return
	}
	defer func() {
		if f != nil {
			f.Close()
		}
		if lockpath != "" {
			os.Remove(lockpath)
		}
	}()
	if err = action(f); err != nil {
		return
	} else if err = f.Sync(); err != nil {
		return
	}
	if err, f = f.Close(), nil; err != nil {
		return
	}

	tildepath := path + "~"
	os.Remove(tildepath)
	os.Link(path, tildepath)
	if err = os.Rename(lockpath, path); err == nil {
		lockpath = ""
	}
	return
}

// Writes data to path through UpdateFile, unless path already holds
// exactly data.  Reports whether the file was written.
func WriteFileIfChanged(path string, data []byte, perm os.FileMode) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	err := UpdateFile(path, perm, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
	return err == nil, err
}
