//go:build unix

package ndmpconf

import (
	"errors"
	"os"
	"syscall"
)

// copyOwner gives name the uid and gid of info. Only root may hand a file to
// another user, so EPERM leaves the file owned by the caller.
func copyOwner(name string, info os.FileInfo) error {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if int(st.Uid) == os.Geteuid() && int(st.Gid) == os.Getegid() {
		return nil
	}
	err := os.Lchown(name, int(st.Uid), int(st.Gid))
	if errors.Is(err, syscall.EPERM) {
		return nil
	}
	return err
}
