// Package codec converts between raw MIDI wire bytes and the structured
// message form. It implements live-wire semantics only: a 0xFF status byte is
// always the system reset real-time message, never a file meta event.
package codec

import (
	"fmt"

	"github.com/leandrodaf/midiroute/sdk/contracts"
)

// WireLength returns the wire size of a fixed-length message with the given
// status byte.
func WireLength(status byte) (int, error) {
	switch {
	case status < 0x80:
		return 0, fmt.Errorf("%w: byte 0x%02X has no status bit", contracts.ErrMalformedMessage, status)
	case status < contracts.StatusProgramChange:
		// Note off/on, poly aftertouch, control change.
		return 3, nil
	case status < contracts.StatusPitchBend:
		// Program change and channel pressure carry a single data byte.
		return 2, nil
	case status < contracts.StatusSysExStart:
		return 3, nil
	}
	switch status {
	case 0xF1, 0xF3:
		// MTC quarter frame, song select.
		return 2, nil
	case 0xF2:
		// Song position pointer.
		return 3, nil
	default:
		// Tune request, EOX and the real-time messages are bare statuses.
		return 1, nil
	}
}

// Encode converts a structured message to wire bytes.
//
// System-exclusive messages are passed through verbatim and must begin with
// 0xF0. Everything else is built from Status/Data1/Data2, sized by the status
// class. A 0xFF status always yields the single-byte reset message regardless
// of the Event tag supplied.
func Encode(m contracts.Message) ([]byte, error) {
	if m.Event == contracts.EventSysEx || len(m.SysEx) > 0 {
		if len(m.SysEx) == 0 {
			return nil, fmt.Errorf("%w: empty sysex payload", contracts.ErrMalformedMessage)
		}
		if m.SysEx[0] != contracts.StatusSysExStart {
			return nil, fmt.Errorf("%w: sysex must begin with 0xF0, got 0x%02X", contracts.ErrMalformedMessage, m.SysEx[0])
		}
		out := make([]byte, len(m.SysEx))
		copy(out, m.SysEx)
		return out, nil
	}

	if m.Status == contracts.StatusReset {
		return []byte{contracts.StatusReset}, nil
	}
	if m.Status == contracts.StatusSysExStart {
		// A lone 0xF0 on the wire is a dangling sysex start.
		return nil, fmt.Errorf("%w: sysex status without a payload", contracts.ErrMalformedMessage)
	}

	n, err := WireLength(m.Status)
	if err != nil {
		return nil, err
	}
	switch n {
	case 1:
		return []byte{m.Status}, nil
	case 2:
		return []byte{m.Status, m.Data1}, nil
	default:
		return []byte{m.Status, m.Data1, m.Data2}, nil
	}
}

// Decode converts wire bytes to the structured form, classifying the event
// kind. Classification never fails for a well-formed fixed-length message:
// unknown statuses fall back to the generic short tag. Empty input and
// non-sysex input longer than three bytes are malformed.
func Decode(wire []byte) (contracts.Message, error) {
	if len(wire) == 0 {
		return contracts.Message{}, fmt.Errorf("%w: empty input", contracts.ErrMalformedMessage)
	}
	if wire[0] == contracts.StatusSysExStart {
		buf := make([]byte, len(wire))
		copy(buf, wire)
		return contracts.Message{
			Status: contracts.StatusSysExStart,
			Event:  contracts.EventSysEx,
			SysEx:  buf,
		}, nil
	}
	if len(wire) > 3 {
		return contracts.Message{}, fmt.Errorf("%w: %d bytes without a sysex lead byte", contracts.ErrMalformedMessage, len(wire))
	}

	m := contracts.Message{Status: wire[0], Event: Classify(wire[0])}
	if len(wire) > 1 {
		m.Data1 = wire[1]
	}
	if len(wire) > 2 {
		m.Data2 = wire[2]
	}
	return m, nil
}

// Classify maps a status byte to its event tag.
func Classify(status byte) contracts.EventType {
	switch status {
	case contracts.StatusSysExStart:
		return contracts.EventSysEx
	case contracts.StatusReset:
		return contracts.EventReset
	}
	switch status & 0xF0 {
	case contracts.StatusNoteOff:
		return contracts.EventNoteOff
	case contracts.StatusNoteOn:
		return contracts.EventNoteOn
	case contracts.StatusPolyAftertouch:
		return contracts.EventPolyAftertouch
	case contracts.StatusControlChange:
		return contracts.EventControlChange
	case contracts.StatusProgramChange:
		return contracts.EventProgramChange
	case contracts.StatusChannelPressure:
		return contracts.EventChannelPressure
	case contracts.StatusPitchBend:
		return contracts.EventPitchBend
	}
	return contracts.EventShort
}

// Normalize coerces any of the accepted outbound forms into wire bytes: raw
// wire bytes, a structured Message, or a transport-native message. Wire input
// is re-encoded through the structured form so the reset collapsing policy
// applies uniformly.
func Normalize(msg any) ([]byte, error) {
	switch v := msg.(type) {
	case []byte:
		m, err := Decode(v)
		if err != nil {
			return nil, err
		}
		return Encode(m)
	case contracts.Message:
		return Encode(v)
	case *contracts.Message:
		return Encode(*v)
	case contracts.NativeMessage:
		return Normalize(v.Bytes())
	default:
		return nil, fmt.Errorf("%w: unsupported message type %T", contracts.ErrMalformedMessage, msg)
	}
}
