// SPDX-FileCopyrightText: 2026 The vminit authors
//
// SPDX-License-Identifier: MIT

package sysinit

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/mdlayher/vsock"
	"golang.org/x/sys/unix"
)

// Phase identifies a control message's position in the boot lifecycle.
type Phase string

// The boot lifecycle phases. Exited and Failed are terminal and
// reported at most once.
const (
	PhaseBooting Phase = "booting"
	PhaseReady   Phase = "ready"
	PhaseExited  Phase = "exited"
	PhaseFailed  Phase = "failed"
)

// Message is one outbound status report. ExitCode is only set for
// terminal phases.
type Message struct {
	Phase    Phase  `json:"phase"`
	ExitCode *int   `json:"exitCode,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// sendTimeout bounds every control write so a stalled host listener
// cannot stall shutdown.
const sendTimeout = 3 * time.Second

// Reporter owns the control connection to the host. All status
// messages flow through it; nothing else writes to the connection.
//
// A nil Reporter swallows all sends, which covers both the no-port and
// the no-listener cases.
type Reporter struct {
	conn net.Conn
	enc  *json.Encoder

	terminalSent bool
}

// DialControl connects to the host's control listener on the given
// vsock port.
//
// The absence of a listener must not abort the boot; callers log the
// error and continue with a nil Reporter.
func DialControl(port uint32) (*Reporter, error) {
	conn, err := vsock.Dial(vsock.Host, port, nil)
	if err != nil {
		return nil, fmt.Errorf("dial control port %d: %w", port, err)
	}

	return NewReporter(conn), nil
}

// NewReporter wraps an established control connection. Messages are
// written as newline-delimited JSON.
func NewReporter(conn net.Conn) *Reporter {
	return &Reporter{
		conn: conn,
		enc:  json.NewEncoder(conn),
	}
}

// Send writes one message to the host. Failures are never fatal to the
// boot; callers log and continue.
func (r *Reporter) Send(msg Message) error {
	if r == nil {
		return nil
	}

	_ = r.conn.SetWriteDeadline(time.Now().Add(sendTimeout))

	if err := r.enc.Encode(msg); err != nil {
		return fmt.Errorf("control send: %w", err)
	}

	return nil
}

// SendTerminal reports the workload outcome. At most one terminal
// message is ever written, no matter how many teardown paths run.
func (r *Reporter) SendTerminal(msg Message) error {
	if r == nil || r.terminalSent {
		return nil
	}

	r.terminalSent = true

	return r.Send(msg)
}

// Close closes the control connection.
func (r *Reporter) Close() error {
	if r == nil {
		return nil
	}

	return r.conn.Close()
}

// TerminalMessage renders the workload's terminal state as the final
// control message.
func TerminalMessage(proc *ManagedProcess) Message {
	switch proc.State {
	case StateExited:
		exitCode := proc.ExitCode

		return Message{Phase: PhaseExited, ExitCode: &exitCode}
	case StateSignaled:
		exitCode := proc.ExitCode

		return Message{
			Phase:    PhaseExited,
			ExitCode: &exitCode,
			Detail:   "terminated by signal " + unix.SignalName(proc.Signal),
		}
	default:
		return Message{Phase: PhaseFailed, Detail: proc.Reason}
	}
}
