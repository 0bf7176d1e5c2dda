//go:build windows

package tempfile

import (
	"errors"

	"golang.org/x/sys/windows"
)

func checkWritable(dir string) error {
	p, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		return errors.New("read-only attribute set")
	}
	return nil
}
