//go:build !linux

package repair

import "os"

func datasync(f *os.File) error {
	return f.Sync()
}
