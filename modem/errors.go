package modem

import "errors"

var (
	// ErrNoDialer is returned when a session is configured without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// reach the radio.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation needs the transport
	// of a session that has not been successfully initialized.
	ErrNotInitialized = errors.New("radio session not initialized")

	// ErrAlreadyClosed is returned when Shutdown is called on a session that
	// has already released its transport.
	ErrAlreadyClosed = errors.New("radio session already closed")

	// ErrNoResponse is returned when the radio does not answer the basic
	// test command within the init timeout.
	//
	// This usually means the radio is not powered, is wedged, or the serial
	// parameters are wrong. The daemon treats it as fatal and pulses the
	// reset line.
	ErrNoResponse = errors.New("radio not responding")

	// ErrCommandFailed is returned when a configuration command is not
	// accepted during bring-up.
	ErrCommandFailed = errors.New("radio command failed")

	// ErrNoStack is returned when the selector is asked for a kind that has
	// no stack registered.
	ErrNoStack = errors.New("no IP stack for kind")

	// ErrLoopRunning is returned when Radio.Loop is started twice.
	ErrLoopRunning = errors.New("radio loop already running")

	// ErrNoSMS is returned when SMS is requested from a device without a
	// cellular radio.
	ErrNoSMS = errors.New("no cellular radio for SMS")

	// ErrSMSFailed is returned when the radio does not confirm a sent SMS.
	ErrSMSFailed = errors.New("SMS not sent")

	// ErrNoPortName is returned by SerialDialer without a port name.
	ErrNoPortName = errors.New("modem: serial port name is required")

	// ErrNoLine is returned by LoopbackDialer without a line.
	ErrNoLine = errors.New("modem: loopback line is required")

	// ErrNilContext is returned by the dialers when called with a nil
	// context.
	ErrNilContext = errors.New("modem: context is nil")
)
