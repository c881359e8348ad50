//go:build !(unix || windows)

package extender

import (
	"os"
	"os/exec"
)

func setupProcessAttributes(cmd *exec.Cmd) {}

func terminateProcess(p *os.Process) error {
	return p.Kill()
}
