package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether a failed Bot API call is worth repeating:
// flood control, timeouts, refused or reset connections and temporary DNS
// failures. API rejections such as "chat not found" are final.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
