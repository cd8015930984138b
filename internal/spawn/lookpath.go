package spawn

import "os/exec"

func lookPathOS(file string) (string, error) {
	return exec.LookPath(file)
}
