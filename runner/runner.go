package runner

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"
)

// Placeholder is replaced with the launched program, the way Steam treats
// launch options.
const Placeholder = "%command%"

var assignRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Expand substitutes target for every %command% in cmd. A command without the
// placeholder gets target appended.
func Expand(cmd, target string) string {
	target = strings.TrimSpace(target)
	if strings.Contains(cmd, Placeholder) {
		return strings.TrimSpace(strings.ReplaceAll(cmd, Placeholder, target))
	}
	if target == "" {
		return strings.TrimSpace(cmd)
	}
	return strings.TrimSpace(cmd) + " " + target
}

// EnvAssignments returns the leading KEY=VALUE words of cmd.
func EnvAssignments(cmd string) []string {
	var env []string
	for _, field := range strings.Fields(cmd) {
		if !assignRegex.MatchString(field) {
			break
		}
		env = append(env, field)
	}
	return env
}

// OutputMsg is sent through the channel for each line of output
type OutputMsg struct {
	Line   string
	IsErr  bool
	Done   bool
	ErrMsg string
}

// Run executes cmd through sh and streams its output through a channel,
// which is closed once the process has exited. Cancelling ctx kills the
// process and abandons any send nobody is receiving.
func Run(ctx context.Context, cmd string, output chan<- OutputMsg) {
	defer close(output)

	send := func(m OutputMsg) bool {
		select {
		case output <- m:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		send(OutputMsg{Done: true, ErrMsg: err.Error()})
	}

	c := exec.CommandContext(ctx, "sh", "-c", cmd)

	stdout, err := c.StdoutPipe()
	if err != nil {
		fail(err)
		return
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		fail(err)
		return
	}
	if err := c.Start(); err != nil {
		fail(err)
		return
	}

	var wg sync.WaitGroup
	stream := func(r io.Reader, isErr bool) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if !send(OutputMsg{Line: scanner.Text(), IsErr: isErr}) {
				return
			}
		}
	}
	wg.Add(2)
	go stream(stdout, false)
	go stream(stderr, true)
	wg.Wait()

	if err := c.Wait(); err != nil {
		fail(err)
		return
	}
	send(OutputMsg{Done: true})
}
