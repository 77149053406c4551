//go:build unix

package core

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so that signals
// reach the whole process tree, not just the immediate child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateGroup(pid int) {
	syscall.Kill(-pid, syscall.SIGTERM)
}

func killGroup(pid int) {
	syscall.Kill(-pid, syscall.SIGKILL)
}
