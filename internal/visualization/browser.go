package visualization

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openerCommand returns the platform command that opens target with its
// default application.
func openerCommand(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", target), nil
	case "darwin":
		return exec.Command("open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Open opens a rendered graph image (or any file or URL) in the user's
// default viewer without waiting for it to exit.
func Open(target string) error {
	cmd, err := openerCommand(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return cmd.Start()
}
