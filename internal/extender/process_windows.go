//go:build windows

package extender

import (
	"os"
	"os/exec"
	"syscall"
)

// createNoWindow keeps console tools from flashing a window
const createNoWindow = 0x08000000

// setupProcessAttributes detaches the child from the console's Ctrl+C handler and hides its window
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | createNoWindow,
	}
}

// terminateProcess stops the process. Windows has no SIGTERM equivalent for console children.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
