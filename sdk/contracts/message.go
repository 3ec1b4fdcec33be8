package contracts

// Well-known MIDI status bytes. Channel voice statuses carry the channel in
// the low nibble; the constants name the high nibble.
const (
	StatusNoteOff         byte = 0x80
	StatusNoteOn          byte = 0x90
	StatusPolyAftertouch  byte = 0xA0
	StatusControlChange   byte = 0xB0
	StatusProgramChange   byte = 0xC0
	StatusChannelPressure byte = 0xD0
	StatusPitchBend       byte = 0xE0
	StatusSysExStart      byte = 0xF0
	StatusReset           byte = 0xFF
)

// TimestampNow tells a transport to deliver a message immediately instead of
// scheduling it for a specific time.
const TimestampNow int64 = -1

// EventType tags the structured form of a MIDI message.
type EventType uint8

const (
	// EventShort is the generic fallback for statuses without a dedicated tag.
	EventShort EventType = iota
	EventNoteOff
	EventNoteOn
	EventPolyAftertouch
	EventControlChange
	EventProgramChange
	EventChannelPressure
	EventPitchBend
	EventSysEx
	EventReset
	// EventMeta exists only so callers can tag messages that originated in a
	// stored file. The codec never produces it and always encodes a 0xFF
	// status as the reset real-time message (live-wire semantics).
	EventMeta
)

var eventTypeNames = map[EventType]string{
	EventShort:           "short",
	EventNoteOff:         "note-off",
	EventNoteOn:          "note-on",
	EventPolyAftertouch:  "poly-aftertouch",
	EventControlChange:   "control-change",
	EventProgramChange:   "program-change",
	EventChannelPressure: "channel-pressure",
	EventPitchBend:       "pitch-bend",
	EventSysEx:           "sysex-start",
	EventReset:           "reset",
	EventMeta:            "meta",
}

func (e EventType) String() string {
	if name, ok := eventTypeNames[e]; ok {
		return name
	}
	return "short"
}

// Message is the structured form of a MIDI message. For fixed-length messages
// Status carries the first wire byte and Data1/Data2 the payload bytes the
// status class calls for. For system-exclusive messages SysEx holds the full
// wire sequence including the 0xF0 lead byte, and Status/Data1/Data2 are
// ignored.
type Message struct {
	Status byte
	Data1  byte
	Data2  byte
	Event  EventType
	SysEx  []byte
}

// NativeMessage is implemented by transport-native message values that can
// expose their raw wire bytes.
type NativeMessage interface {
	Bytes() []byte
}
