//go:build !tinygo

package diag

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// OpenSerial opens a serial port as a log sink. A non-positive baud uses
// DefaultBaud.
func OpenSerial(port string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("diag: open serial port %s: %w", port, err)
	}
	return p, nil
}
