//go:build unix

package command

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own session so it survives the terminal
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
