//go:build !unix

package core

import (
	"os"
	"os/exec"
)

// Process groups are a unix concept; elsewhere we can only signal the
// immediate child, and "terminate" is a hard kill.
func setProcessGroup(cmd *exec.Cmd) {}

func terminateGroup(pid int) {
	killGroup(pid)
}

func killGroup(pid int) {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	proc.Kill()
}
