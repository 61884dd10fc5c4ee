// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport carries protocol lines over a serial port.
package transport

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/Thermoquad/bearcat/pkg/bearcat"
)

// Defaults for the BC75XLT remote port
const (
	DefaultBaudRate    = 57600
	DefaultReadTimeout = 3 * time.Second
)

// Port is the subset of serial.Port used by Transport
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// openPort is replaced in tests
var openPort = func(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Config holds serial line settings
type Config struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// DefaultConfig returns 57600 8N1 with a 3 second read timeout
func DefaultConfig() Config {
	return Config{
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Transport sends command lines and receives terminated reply lines.
// It implements bearcat.Conn and bearcat.Flusher.
type Transport struct {
	port    Port
	name    string
	cfg     Config
	logger  *zap.Logger
	decoder *bearcat.Decoder
	replies []reply // decoded ahead of the current reply, in arrival order
	buf     []byte
}

// reply is one terminated line, or the error it decoded to
type reply struct {
	line string
	err  error
}

// Open opens a serial port at 8N1 and returns a Transport on it.
// Open failures are returned as *bearcat.ConnectionError.
func Open(portName string, cfg Config, logger *zap.Logger) (*Transport, error) {
	cfg = cfg.withDefaults()
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := openPort(portName, mode)
	if err != nil {
		return nil, &bearcat.ConnectionError{Port: portName, Err: classifyOpenError(err)}
	}

	t := New(port, cfg, logger)
	t.name = portName
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, &bearcat.ConnectionError{Port: portName, Err: err}
	}

	t.logger.Debug("serial port opened",
		zap.String("port", portName),
		zap.Int("baud", cfg.BaudRate),
		zap.Duration("timeout", cfg.ReadTimeout))
	return t, nil
}

// New wraps an already open port
func New(port Port, cfg Config, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		port:    port,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		decoder: bearcat.NewDecoder(),
		buf:     make([]byte, 128),
	}
}

// classifyOpenError maps serial and OS errors to the bearcat sentinels
func classifyOpenError(err error) error {
	code, ok := portErrorCode(err)
	switch {
	case ok && code == serial.PortNotFound, errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", bearcat.ErrDeviceNotFound, err)
	case ok && code == serial.PermissionDenied, errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", bearcat.ErrPermissionDenied, err)
	case ok && code == serial.PortBusy:
		return fmt.Errorf("%w: %v", bearcat.ErrDeviceInUse, err)
	}
	return err
}

func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}

// Name returns the port name given to Open
func (t *Transport) Name() string {
	return t.name
}

// Send writes one line followed by the terminator
func (t *Transport) Send(line string) error {
	t.logger.Debug("> " + line)

	data := append([]byte(line), bearcat.Terminator)
	n, err := t.port.Write(data)
	if err != nil {
		return &bearcat.IOError{Op: "write", Err: err}
	}
	if n != len(data) {
		return &bearcat.IOError{Op: "write", Err: io.ErrShortWrite}
	}
	return nil
}

// Receive blocks until a terminated line arrives or the read timeout
// elapses. A partial line left at timeout is discarded.
func (t *Transport) Receive() (string, error) {
	if len(t.replies) > 0 {
		return t.pop()
	}

	deadline := time.Now().Add(t.cfg.ReadTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", t.timeout()
		}
		if err := t.port.SetReadTimeout(remaining); err != nil {
			return "", &bearcat.IOError{Op: "read", Err: err}
		}

		n, err := t.port.Read(t.buf)
		if err != nil {
			return "", &bearcat.IOError{Op: "read", Err: err}
		}
		if n == 0 {
			return "", t.timeout()
		}

		t.decode(t.buf[:n])
		if len(t.replies) > 0 {
			return t.pop()
		}
	}
}

// decode queues every line completed by data. A bad line is queued as its
// error so the lines after it in the same read are kept.
func (t *Transport) decode(data []byte) {
	for _, b := range data {
		line, done, err := t.decoder.DecodeByte(b)
		switch {
		case err != nil:
			t.replies = append(t.replies, reply{err: err})
		case done:
			t.replies = append(t.replies, reply{line: line})
		}
	}
}

func (t *Transport) pop() (string, error) {
	r := t.replies[0]
	t.replies = t.replies[1:]
	if r.err != nil {
		t.logger.Debug("dropped undecodable reply", zap.Error(r.err))
		return "", r.err
	}
	t.logger.Debug("< " + r.line)
	return r.line, nil
}

func (t *Transport) timeout() error {
	partial := t.decoder.Pending()
	t.decoder.Reset()
	if partial > 0 {
		t.logger.Debug("discarded unterminated reply", zap.Int("bytes", partial))
	}
	return &bearcat.TimeoutError{After: t.cfg.ReadTimeout, Partial: partial}
}

// Query sends a line and waits for one reply line
func (t *Transport) Query(line string) (string, error) {
	if err := t.Send(line); err != nil {
		return "", err
	}
	return t.Receive()
}

// Flush discards buffered input, both in the OS and read ahead here
func (t *Transport) Flush() error {
	if n := len(t.replies); n > 0 {
		t.logger.Debug("discarded read-ahead lines", zap.Int("lines", n))
	}
	t.replies = nil
	t.decoder.Reset()
	if err := t.port.ResetInputBuffer(); err != nil {
		return &bearcat.IOError{Op: "flush", Err: err}
	}
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	return t.port.Close()
}
