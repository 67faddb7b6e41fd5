package player

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

type ipcCommand struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	readBufSize  = 4096
)

// sendCommand sends a JSON-IPC command, retrying transient connection errors.
func (m *MPV) sendCommand(command []any) (any, error) {
	m.ipcMu.Lock()
	defer m.ipcMu.Unlock()

	socket := m.socket()
	if socket == "" {
		return nil, ErrNotStarted
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(socket, command)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	buf := make([]byte, readBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	// mpv may push events before the reply; the reply is the line carrying "error".
	lines, rest := splitLines(buf[:n])
	if len(rest) > 0 {
		lines = append(lines, string(rest))
	}

	for _, line := range lines {
		var resp ipcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil || resp.Error == "" {
			continue
		}
		if resp.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", resp.Error)
		}
		return resp.Data, nil
	}

	return nil, fmt.Errorf("no reply in %d bytes", n)
}
