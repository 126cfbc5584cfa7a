package common

import (
	"fmt"
	"os/exec"
	"strings"
)

// RunCommand executes the named binary with args and returns its combined output.
func RunCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("%s %s failed: %w\n%s", name, strings.Join(args, " "), err, output)
	}

	return output, nil
}
