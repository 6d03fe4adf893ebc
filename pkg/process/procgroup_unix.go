//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// killProcessGroupOnCancel starts cmd in its own process group so cancellation also reaches
// the children it spawned.
func killProcessGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
