package host

import (
	"fmt"
	"os"
	"os/exec"
)

// Relaunch starts a fresh copy of the (already replaced) executable with the
// same arguments. Callers stop their own server first so the new process can
// bind the same address.
func Relaunch() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", exe, err)
	}
	return cmd.Process.Release()
}
