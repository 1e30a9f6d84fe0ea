//go:build unix

package solver

import (
	"os/exec"
	"syscall"
)

// startOwnGroup puts the solver in a new process group so that the helper
// processes it spawns can be killed with it.
func startOwnGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killGroup(cmd *exec.Cmd) {
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
