//go:build unix

package extender

import (
	"os"
	"os/exec"
	"syscall"
)

// setupProcessAttributes puts the child in its own process group so a terminal
// Ctrl+C reaches us first and the child is stopped through cancellation
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcess asks the child's process group to finish up and exit
func terminateProcess(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGTERM); err == nil {
		return nil
	}
	return p.Signal(syscall.SIGTERM)
}
