package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
)

// StdioTransport talks to an MCP server over the stdin/stdout of a child
// process, one newline-delimited JSON-RPC message per line.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewStdioTransport prepares a child-process transport. The env map is
// layered over the inherited environment. Call Start to spawn the process.
func NewStdioTransport(command string, args []string, env map[string]string) *StdioTransport {
	cmd := exec.Command(command, args...)
	cmd.Env = overlayEnv(os.Environ(), env)
	cmd.Stderr = os.Stderr
	return &StdioTransport{cmd: cmd}
}

// Start spawns the child process and wires up its pipes.
func (t *StdioTransport) Start() error {
	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	t.stdin = stdin

	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	t.reader = bufio.NewReader(stdout)

	if err := t.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", t.cmd.Path, err)
	}
	return nil
}

// Send writes one request line and, for non-notifications, reads one
// response line. A mutex keeps a single request in flight at a time.
func (t *StdioTransport) Send(_ context.Context, req *Request) (*Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := t.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write to server stdin: %w", err)
	}

	// Notifications have no id and get no response.
	if req.ID == 0 {
		return nil, nil
	}

	// Servers may interleave notifications with responses; skip anything
	// that is not the reply to this request.
	for {
		line, err := t.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read from server stdout: %w", err)
		}

		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if resp.ID == req.ID {
			return &resp, nil
		}
	}
}

// Close terminates the child: stdin closed, process killed and reaped.
func (t *StdioTransport) Close() error {
	if t.stdin != nil {
		t.stdin.Close()
	}
	if t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	// Reap to avoid zombies; the kill makes Wait's error meaningless.
	_ = t.cmd.Wait()
	return nil
}

// overlayEnv layers override variables onto a base KEY=VALUE environment.
// Overridden keys keep their original position.
func overlayEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	remaining := make(map[string]string, len(overrides))
	for k, v := range overrides {
		remaining[k] = v
	}

	result := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key, _, found := strings.Cut(entry, "=")
		if !found {
			result = append(result, entry)
			continue
		}
		if value, ok := remaining[key]; ok {
			result = append(result, key+"="+value)
			delete(remaining, key)
			continue
		}
		result = append(result, entry)
	}

	// Append overrides that were not present in the base, sorted for
	// deterministic process environments.
	extra := make([]string, 0, len(remaining))
	for key, value := range remaining {
		extra = append(extra, key+"="+value)
	}
	sort.Strings(extra)
	return append(result, extra...)
}
