package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate used when none is configured.
const DefaultBaudRate = 115200

// Serial reads IMU lines from a serial port and keeps the latest reading.
type Serial struct {
	latest *Latest
	port   io.ReadCloser
	logger *slog.Logger
}

// OpenSerial opens portName at 8N1 and the given baud rate. opts configure
// how parsed readings are held.
func OpenSerial(portName string, baud int, logger *slog.Logger, opts ...LatestOption) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", portName, err)
	}
	return newSerial(port, logger, opts...), nil
}

func newSerial(port io.ReadCloser, logger *slog.Logger, opts ...LatestOption) *Serial {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serial{
		latest: NewLatest(opts...),
		port:   port,
		logger: logger,
	}
}

// Monitor reads lines until ctx is cancelled or the port is closed.
// Malformed lines are logged and skipped.
func (s *Serial) Monitor(ctx context.Context) error {
	// Closing the port unblocks the scanner.
	stop := context.AfterFunc(ctx, func() { _ = s.port.Close() })
	defer stop()

	scan := bufio.NewScanner(s.port)
	for scan.Scan() {
		reading, err := ParseLine(scan.Text())
		if err != nil {
			s.logger.Debug("skipping IMU line", "error", err)
			continue
		}
		s.latest.Set(reading)
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scan.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading serial port: %w", err)
	}
	return nil
}

// Latest returns the most recent parsed reading while it is still current.
func (s *Serial) Latest() (Reading, bool) {
	return s.latest.Latest()
}

// Close closes the underlying port.
func (s *Serial) Close() error {
	return s.port.Close()
}

var _ Source = (*Serial)(nil)
