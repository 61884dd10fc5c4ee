// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bearcat

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Conn is a synchronous line connection to the scanner
type Conn interface {
	Send(line string) error
	Receive() (string, error)
	Close() error
}

// Flusher is implemented by connections that can discard unread input
type Flusher interface {
	Flush() error
}

// Observer receives the outcome of every command round trip
type Observer interface {
	ObserveCommand(verb string, elapsed time.Duration, err error)
}

// Mode is the client-side shadow of the scanner's program mode
type Mode int

const (
	ModeIdle Mode = iota
	ModeProgram
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeProgram:
		return "program"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Identity is the result of a self check
type Identity struct {
	Model    string
	Firmware string
	Bandplan string
	Region   string
}

// Scanner sequences commands over a single connection and tracks program
// mode. It is not safe for concurrent use: the protocol has no request
// identifiers, so only one command may be outstanding.
type Scanner struct {
	conn      Conn
	mode      Mode
	logger    *zap.Logger
	supported []string
	bandplans map[string]string
	retries   int
	verify    bool
	limiter   *rate.Limiter
	observer  Observer
	stats     *Statistics
}

// Option configures a Scanner
type Option func(*Scanner)

// WithLogger sets the logger (default: no-op)
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSupportedModels replaces the model allow-list used by SelfCheck
func WithSupportedModels(models ...string) Option {
	return func(s *Scanner) {
		if len(models) > 0 {
			s.supported = slices.Clone(models)
		}
	}
}

// WithBandplans replaces the bandplan code to region table
func WithBandplans(table map[string]string) Option {
	return func(s *Scanner) {
		if len(table) > 0 {
			s.bandplans = maps.Clone(table)
		}
	}
}

// WithRetries sets how many times channel enumeration resyncs and retries
// a slot after a timeout or malformed reply (default 1)
func WithRetries(n int) Option {
	return func(s *Scanner) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// WithVerifyWrites makes SetChannel read every written slot back
func WithVerifyWrites(verify bool) Option {
	return func(s *Scanner) {
		s.verify = verify
	}
}

// WithCommandInterval enforces a minimum spacing between commands.
// Zero disables pacing.
func WithCommandInterval(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			s.limiter = nil
		}
	}
}

// WithObserver registers a round trip observer
func WithObserver(o Observer) Option {
	return func(s *Scanner) {
		s.observer = o
	}
}

// New creates a Scanner on an open connection. The scanner starts in
// ModeIdle; call Initialize before the first command.
func New(conn Conn, opts ...Option) *Scanner {
	s := &Scanner{
		conn:      conn,
		mode:      ModeIdle,
		logger:    zap.NewNop(),
		supported: slices.Clone(DefaultSupportedModels),
		bandplans: maps.Clone(DefaultBandplans),
		retries:   1,
		stats:     NewStatistics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the current program mode state
func (s *Scanner) Mode() Mode {
	return s.mode
}

// Stats returns the round trip statistics
func (s *Scanner) Stats() *Statistics {
	return s.stats
}

// SupportedModels returns the model allow-list
func (s *Scanner) SupportedModels() []string {
	return slices.Clone(s.supported)
}

// Close leaves program mode if the scanner is in it and closes the
// connection
func (s *Scanner) Close() error {
	if s.mode == ModeProgram {
		if err := s.ExitProgramMode(); err != nil {
			s.logger.Warn("exit program mode on close", zap.Error(err))
		}
	}
	return s.conn.Close()
}

//////////////////////////////////////////////////////////////
// Round trips
//////////////////////////////////////////////////////////////

func (s *Scanner) pace() {
	if s.limiter != nil {
		time.Sleep(s.limiter.Reserve().Delay())
	}
}

func (s *Scanner) roundTrip(line string) (string, error) {
	s.pace()
	if err := s.conn.Send(line); err != nil {
		return "", err
	}
	return s.conn.Receive()
}

func (s *Scanner) record(verb string, elapsed time.Duration, err error) {
	s.stats.Update(elapsed, err)
	if s.observer != nil {
		s.observer.ObserveCommand(verb, elapsed, err)
	}
}

// Query sends a raw line and returns the raw reply. Nothing is validated.
func (s *Scanner) Query(line string) (string, error) {
	start := time.Now()
	reply, err := s.roundTrip(line)
	s.record(ParseFrame(line).Verb(), time.Since(start), err)
	return reply, err
}

// do sends a frame and runs check on the parsed reply. ERR and
// "<verb>,NG" replies are turned into a CommandError before check runs.
func (s *Scanner) do(f Frame, check func(reply Frame) error) (Frame, error) {
	line, err := f.Encode()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := s.roundTrip(line)
	var reply Frame
	if err == nil {
		reply = ParseFrame(raw)
		switch {
		case raw == StatusError, reply.IsStatus(f.Verb(), StatusNG):
			err = &CommandError{Command: f.Verb(), Reply: raw}
		case check != nil:
			err = check(reply)
		}
	}
	s.record(f.Verb(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FormatCommandName(f.Verb()), err)
	}
	return reply, nil
}

// value sends a query whose reply is "<verb>,<value>" and returns value
func (s *Scanner) value(f Frame) (string, error) {
	reply, err := s.do(f, func(reply Frame) error {
		if len(reply) < 2 || reply.Verb() != f.Verb() {
			return &MalformedRecordError{Fields: reply, Reason: "expected " + f.Verb() + ",<value>"}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply[1], nil
}

// ack sends a command whose reply must be "<verb>,OK"
func (s *Scanner) ack(f Frame) error {
	_, err := s.do(f, func(reply Frame) error {
		if !reply.IsStatus(f.Verb(), StatusOK) {
			return &CommandError{Command: f.Verb(), Reply: reply.String()}
		}
		return nil
	})
	return err
}

//////////////////////////////////////////////////////////////
// Session lifecycle
//////////////////////////////////////////////////////////////

// Initialize discards unread input when the connection supports it, then
// drains stale output left in the scanner from a previous session by
// issuing one empty command. Its reply, or the lack of one, is discarded.
func (s *Scanner) Initialize() error {
	if f, ok := s.conn.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}

	reply, err := s.Query(CmdDrain)
	if err != nil && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("drain: %w", err)
	}
	s.logger.Debug("drained", zap.String("reply", reply), zap.Error(err))
	return nil
}

// Resync repeats Initialize after a reply that left the conversation out
// of step.
func (s *Scanner) Resync() error {
	s.stats.Resyncs++
	return s.Initialize()
}

// EnterProgramMode switches the scanner into program mode. It is a no-op
// when already in program mode.
func (s *Scanner) EnterProgramMode() error {
	if s.mode == ModeProgram {
		return nil
	}
	if err := s.ack(NewProgramMode()); err != nil {
		return err
	}
	s.mode = ModeProgram
	s.logger.Debug("entered program mode")
	return nil
}

// ExitProgramMode sends EPG regardless of the shadow state; the scanner
// tracks its own mode.
func (s *Scanner) ExitProgramMode() error {
	if err := s.ack(NewExitProgramMode()); err != nil {
		return err
	}
	s.mode = ModeIdle
	s.logger.Debug("exited program mode")
	return nil
}

//////////////////////////////////////////////////////////////
// Identification
//////////////////////////////////////////////////////////////

// Model returns the model identifier
func (s *Scanner) Model() (string, error) {
	return s.value(NewModelQuery())
}

// Firmware returns the firmware version string
func (s *Scanner) Firmware() (string, error) {
	return s.value(NewFirmwareQuery())
}

// Bandplan returns the raw bandplan code. Enters program mode.
func (s *Scanner) Bandplan() (string, error) {
	if err := s.EnterProgramMode(); err != nil {
		return "", err
	}
	return s.value(NewBandplanQuery())
}

// Region maps a bandplan code to its region name
func (s *Scanner) Region(code string) (string, error) {
	region, ok := s.bandplans[code]
	if !ok {
		return "", &LookupError{Table: "bandplan", Key: code}
	}
	return region, nil
}

// SelfCheck verifies the model is supported, then reads firmware and
// bandplan. No further commands are sent after an unsupported model.
func (s *Scanner) SelfCheck() (Identity, error) {
	var id Identity

	model, err := s.Model()
	if err != nil {
		return id, err
	}
	id.Model = model
	if !slices.Contains(s.supported, model) {
		return id, &UnsupportedModelError{Model: model, Supported: s.SupportedModels()}
	}

	if id.Firmware, err = s.Firmware(); err != nil {
		return id, err
	}
	if id.Bandplan, err = s.Bandplan(); err != nil {
		return id, err
	}
	if id.Region, err = s.Region(id.Bandplan); err != nil {
		return id, err
	}

	s.logger.Info("self check passed",
		zap.String("model", id.Model),
		zap.String("firmware", id.Firmware),
		zap.String("bandplan", id.Bandplan),
		zap.String("region", id.Region))
	return id, nil
}

//////////////////////////////////////////////////////////////
// Channels
//////////////////////////////////////////////////////////////

// Channel reads one channel slot. Indices outside 1..300 are rejected
// without any wire traffic. Enters program mode.
func (s *Scanner) Channel(index int) (Channel, error) {
	q, err := NewChannelQuery(index)
	if err != nil {
		return Channel{}, err
	}
	if err := s.EnterProgramMode(); err != nil {
		return Channel{}, err
	}

	var ch Channel
	_, err = s.do(q, func(reply Frame) error {
		var err error
		if ch, err = DecodeChannel(reply); err != nil {
			return err
		}
		if ch.Index != index {
			return &MalformedRecordError{Fields: reply, Reason: fmt.Sprintf("reply for channel %d, requested %d", ch.Index, index)}
		}
		return nil
	})
	if err != nil {
		return Channel{}, err
	}
	return ch, nil
}

// SetChannel writes one channel slot and checks the scanner acknowledged
// it. With verification enabled the slot is read back and compared.
// Enters program mode.
func (s *Scanner) SetChannel(c Channel) error {
	w, err := NewChannelWrite(c)
	if err != nil {
		return err
	}
	if err := s.EnterProgramMode(); err != nil {
		return err
	}
	if err := s.ack(w); err != nil {
		return err
	}
	if !s.verify {
		return nil
	}

	got, err := s.Channel(c.Index)
	if err != nil {
		return fmt.Errorf("verify channel %d: %w", c.Index, err)
	}
	if !sameSettings(got, c) {
		return fmt.Errorf("%w: channel %d wrote %s, read %s", ErrVerifyMismatch, c.Index, FormatChannel(c), FormatChannel(got))
	}
	return nil
}

// sameSettings compares the fields the write path controls
func sameSettings(a, b Channel) bool {
	return a.Index == b.Index &&
		a.Frequency == b.Frequency &&
		a.Delay == b.Delay &&
		a.Lockout == b.Lockout &&
		a.Priority == b.Priority
}

// ClearMemory erases every channel slot. Enters program mode.
func (s *Scanner) ClearMemory() error {
	if err := s.EnterProgramMode(); err != nil {
		return err
	}
	return s.ack(NewClearMemory())
}

// Channels returns every channel slot in index order. See ChannelRange.
func (s *Scanner) Channels() iter.Seq2[Channel, error] {
	return s.ChannelRange(MinChannel, MaxChannel)
}

// ChannelRange lazily reads slots from..to inclusive, one round trip per
// slot. A slot that times out or comes back malformed is retried after a
// resync; when retries run out the error is yielded and iteration stops.
// The sequence can be ranged over again to restart.
func (s *Scanner) ChannelRange(from, to int) iter.Seq2[Channel, error] {
	return func(yield func(Channel, error) bool) {
		if !ValidIndex(from) || !ValidIndex(to) || from > to {
			yield(Channel{}, fmt.Errorf("%w: %d-%d", ErrChannelOutOfRange, from, to))
			return
		}
		for i := from; i <= to; i++ {
			ch, err := s.channelWithRetry(i)
			if !yield(ch, err) || err != nil {
				return
			}
		}
	}
}

func (s *Scanner) channelWithRetry(index int) (Channel, error) {
	for attempt := 0; ; attempt++ {
		ch, err := s.Channel(index)
		if err == nil || !retryable(err) || attempt >= s.retries {
			return ch, err
		}

		s.stats.Retries++
		s.logger.Warn("channel read failed, resyncing",
			zap.Int("channel", index),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if rerr := s.Resync(); rerr != nil {
			return ch, fmt.Errorf("%w (resync: %v)", err, rerr)
		}
	}
}

func retryable(err error) bool {
	var (
		malformedErr *MalformedRecordError
		decodeErr    *DecodeError
	)
	return errors.Is(err, ErrTimeout) || errors.As(err, &malformedErr) || errors.As(err, &decodeErr)
}
