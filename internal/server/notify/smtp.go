package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
	now  func() time.Time
}

// NewSMTPSender uses PLAIN auth when user is set.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		from: from,
		now:  time.Now,
	}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (*Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.ContainsAny(msg.To, "\r\n") {
		return nil, fmt.Errorf("invalid recipient %q", msg.To)
	}

	if err := sendMail(s.addr, s.auth, s.from, []string{msg.To}, s.render(msg)); err != nil {
		return nil, fmt.Errorf("smtp send: %w", err)
	}
	return &Delivery{}, nil
}

func (s *SMTPSender) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
