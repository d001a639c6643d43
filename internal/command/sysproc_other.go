//go:build !linux

package command

import "syscall"

// Parent-death signals are Linux-only; elsewhere children rely on the timeout.
func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
