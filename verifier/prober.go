package verifier

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ProbeStatus is the inferred liveness of a mailbox.
type ProbeStatus string

const (
	ProbeActive   ProbeStatus = StatusActive
	ProbeInactive ProbeStatus = StatusInactive
	ProbeUnknown  ProbeStatus = StatusUnknown
)

// Prober asks a mail exchanger whether it would accept mail for an address.
type Prober interface {
	Probe(ctx context.Context, mxHost, email string) ProbeStatus
}

// SMTPProber opens a raw SMTP session and issues a synthetic delivery
// attempt: greeting → EHLO → MAIL FROM → RCPT TO → QUIT. It never sends
// DATA, so no mail is delivered. Each probe is one isolated session with no
// retries; servers that greylist, rate-limit or drop the connection degrade
// to unknown, never to a hard failure.
type SMTPProber struct {
	Port       int
	Timeout    time.Duration
	HELODomain string
	MailFrom   string
	Log        logrus.FieldLogger
}

func NewSMTPProber(port int, timeout time.Duration, heloDomain, mailFrom string, log logrus.FieldLogger) *SMTPProber {
	return &SMTPProber{
		Port:       port,
		Timeout:    timeout,
		HELODomain: heloDomain,
		MailFrom:   mailFrom,
		Log:        log,
	}
}

// Probe runs the handshake against one mail exchanger. Response policy:
// 2xx on RCPT ⇒ active, 550/551 ⇒ inactive, anything else ⇒ unknown.
func (p *SMTPProber) Probe(ctx context.Context, mxHost, email string) ProbeStatus {
	addr := net.JoinHostPort(mxHost, strconv.Itoa(p.Port))

	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		p.Log.WithFields(logrus.Fields{"mx": addr, "email": email}).WithError(err).Debug("smtp connect failed")
		return ProbeUnknown
	}
	defer conn.Close()

	deadline := time.Now().Add(p.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	r := bufio.NewReader(conn)

	// Greeting, then one timeout-guarded read per expected response.
	if code, err := readReply(r); err != nil || code < 200 || code >= 300 {
		return ProbeUnknown
	}
	for _, cmd := range []string{
		"EHLO " + p.HELODomain,
		"MAIL FROM:<" + p.MailFrom + ">",
	} {
		if err := writeLine(conn, cmd); err != nil {
			return ProbeUnknown
		}
		if code, err := readReply(r); err != nil || code < 200 || code >= 300 {
			return ProbeUnknown
		}
	}

	if err := writeLine(conn, "RCPT TO:<"+email+">"); err != nil {
		return ProbeUnknown
	}
	code, err := readReply(r)

	// Close the session cleanly regardless of the answer.
	_ = writeLine(conn, "QUIT")

	if err != nil {
		return ProbeUnknown
	}
	switch {
	case code >= 200 && code < 300:
		return ProbeActive
	case code == 550 || code == 551:
		return ProbeInactive
	default:
		return ProbeUnknown
	}
}

func writeLine(conn net.Conn, line string) error {
	_, err := conn.Write([]byte(line + "\r\n"))
	return err
}

// readReply consumes one full SMTP reply, including multiline continuations
// ("250-..." lines), and returns the status code of the terminating line.
func readReply(r *bufio.Reader) (int, error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, err
		}
		if len(line) < 4 {
			return 0, fmt.Errorf("short smtp reply %q", line)
		}
		code, err := strconv.Atoi(line[:3])
		if err != nil {
			return 0, fmt.Errorf("malformed smtp reply %q", line)
		}
		if line[3] == '-' {
			continue // multiline reply, keep reading
		}
		return code, nil
	}
}
