package snapshot

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// killProcessTree kills Chrome and its helpers. proc.Kill alone leaves the
// renderer, GPU and crashpad children running: on Windows they survive the
// parent, elsewhere they are reparented to PID 1.
func killProcessTree(proc *os.Process) {
	if proc == nil {
		return
	}
	if runtime.GOOS == "windows" {
		_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(proc.Pid)).Run()
		return
	}
	// chromedp starts Chrome with Setpgid, so the group ID is the parent PID.
	if err := exec.Command("kill", "-9", "--", "-"+strconv.Itoa(proc.Pid)).Run(); err != nil {
		_ = proc.Kill()
	}
}
