//go:build windows

package player

import (
	"os/exec"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func terminateProcess(cmd *exec.Cmd) error {
	return killProcess(cmd)
}

func suspendProcess(*exec.Cmd, bool) error {
	return ErrUnsupported
}
