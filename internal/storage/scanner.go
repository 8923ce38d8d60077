package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ClamdScanner streams uploads to a ClamAV daemon before they reach the bucket.
type ClamdScanner struct {
	addr string
}

// NewClamdScanner returns nil when addr is empty, which disables scanning.
func NewClamdScanner(addr string) *ClamdScanner {
	if addr == "" {
		return nil
	}
	return &ClamdScanner{addr: addr}
}

// Scan returns ErrInfected when clamd reports a signature match. Any other
// non-OK status is a scanner failure. A nil scanner accepts everything.
func (s *ClamdScanner) Scan(r io.Reader) error {
	if s == nil {
		return nil
	}
	client := clamd.NewClamd(s.addr)

	abort := make(chan bool)
	defer close(abort)

	results, err := client.ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}

	// 需要读完整个 channel，clamd 客户端才会退出。
	var verdict error
	for result := range results {
		if err := scanVerdict(result); err != nil && !errors.Is(verdict, ErrInfected) {
			verdict = err
		}
	}
	return verdict
}

func scanVerdict(result *clamd.ScanResult) error {
	switch result.Status {
	case clamd.RES_OK:
		return nil
	case clamd.RES_FOUND:
		return ErrInfected
	default:
		return fmt.Errorf("clamd status %q: %s", result.Status, result.Description)
	}
}
