//go:build windows
// +build windows

// Package transportwindows adapts the winmm multimedia API to the transport
// contract.
package transportwindows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/midiroute/internal/codec"
	"github.com/leandrodaf/midiroute/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Callback flags for midiInOpen.
const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
)

// MIDI input driver messages.
const (
	mimOpen     = 0x3C1
	mimClose    = 0x3C2
	mimData     = 0x3C3
	mimLongData = 0x3C4
	mimError    = 0x3C5
)

// MIDIHDR dwFlags.
const mhdrDone = 0x00000001

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

type midiHdr struct {
	lpData          uintptr
	dwBufferLength  uint32
	dwBytesRecorded uint32
	dwUser          uintptr
	dwFlags         uint32
	lpNext          uintptr
	reserved        uintptr
	dwOffset        uint32
	dwReserved      [8]uintptr
}

var (
	winmm = windows.NewLazySystemDLL("winmm.dll")

	procMidiInGetNumDevs  = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps  = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen        = winmm.NewProc("midiInOpen")
	procMidiInStart       = winmm.NewProc("midiInStart")
	procMidiInStop        = winmm.NewProc("midiInStop")
	procMidiInClose       = winmm.NewProc("midiInClose")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutPrepareHdr = winmm.NewProc("midiOutPrepareHeader")
	procMidiOutLongMsg    = winmm.NewProc("midiOutLongMsg")
	procMidiOutUnprepHdr  = winmm.NewProc("midiOutUnprepareHeader")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// inputCallback is created once: winmm callbacks cannot be released.
var inputCallback = windows.NewCallback(midiInCallback)

// Transport enumerates winmm input and output devices. winmm has no client
// object, so the transport itself is stateless.
type Transport struct{}

func New(clientName string) (*Transport, error) {
	return &Transport{}, nil
}

func (t *Transport) Devices() ([]contracts.Device, error) {
	var devices []contracts.Device

	r0, _, _ := procMidiInGetNumDevs.Call()
	for i := uint32(0); i < uint32(r0); i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			continue
		}
		devices = append(devices, &inputDevice{
			id:   i,
			name: windows.UTF16ToString(caps.szPname[:]),
		})
	}

	r0, _, _ = procMidiOutGetNumDevs.Call()
	for i := uint32(0); i < uint32(r0); i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			continue
		}
		devices = append(devices, &outputDevice{
			id:   i,
			name: windows.UTF16ToString(caps.szPname[:]),
		})
	}
	return devices, nil
}

func (t *Transport) Close() error { return nil }

// inputDevice is a winmm MIDI input, which can only transmit.
type inputDevice struct {
	id   uint32
	name string
}

func (d *inputDevice) Name() string { return d.name }

func (d *inputDevice) MaxTransmitters() int { return 1 }

func (d *inputDevice) MaxReceivers() int { return 0 }

func (d *inputDevice) Transmitter() (contracts.Transmitter, error) {
	return &inputTransmitter{deviceID: d.id, name: d.name}, nil
}

func (d *inputDevice) Receiver() (contracts.Receiver, error) {
	return nil, fmt.Errorf("%w: MIDI input %q cannot receive", contracts.ErrUnsupportedDirection, d.name)
}

// inputTransmitter opens the device and starts capture while a receiver
// occupies the slot. midiInCallback runs on a winmm thread; deliveries run
// synchronously on it.
type inputTransmitter struct {
	deviceID uint32
	name     string

	mu      sync.Mutex
	handle  windows.Handle
	slot    contracts.Receiver
	started bool
}

func (x *inputTransmitter) SetReceiver(r contracts.Receiver) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.slot = r
	if r == nil {
		return x.stopLocked()
	}
	if x.started {
		return nil
	}

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&x.handle)),
		uintptr(x.deviceID),
		inputCallback,
		uintptr(unsafe.Pointer(x)),
		callbackFunction|midiIOStatus,
	)
	if r1 != 0 {
		x.slot = nil
		return fmt.Errorf("opening MIDI input %q: %v", x.name, err)
	}
	r1, _, err = procMidiInStart.Call(uintptr(x.handle))
	if r1 != 0 {
		procMidiInClose.Call(uintptr(x.handle))
		x.handle = 0
		x.slot = nil
		return fmt.Errorf("starting MIDI capture on %q: %v", x.name, err)
	}
	x.started = true
	return nil
}

func (x *inputTransmitter) stopLocked() error {
	if !x.started {
		return nil
	}
	procMidiInStop.Call(uintptr(x.handle))
	r1, _, err := procMidiInClose.Call(uintptr(x.handle))
	x.handle = 0
	x.started = false
	if r1 != 0 {
		return fmt.Errorf("closing MIDI input %q: %v", x.name, err)
	}
	return nil
}

func (x *inputTransmitter) Receiver() contracts.Receiver {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.slot
}

func (x *inputTransmitter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.slot = nil
	return x.stopLocked()
}

// midiInCallback unpacks MIM_DATA events. dwParam1 packs status, data1 and
// data2 into one dword; dwParam2 is milliseconds since midiInStart.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	if wMsg != mimData {
		return 0
	}
	x := (*inputTransmitter)(unsafe.Pointer(dwInstance))

	x.mu.Lock()
	dest := x.slot
	x.mu.Unlock()
	if dest == nil {
		return 0
	}

	wire := []byte{
		byte(dwParam1),
		byte(dwParam1 >> 8),
		byte(dwParam1 >> 16),
	}
	n, err := codec.WireLength(wire[0])
	if err != nil {
		return 0
	}
	_ = dest.Deliver(wire[:n], int64(uint32(dwParam2))*1000)
	return 0
}

// outputDevice is a winmm MIDI output, which can only receive.
type outputDevice struct {
	id   uint32
	name string
}

func (d *outputDevice) Name() string { return d.name }

func (d *outputDevice) MaxTransmitters() int { return 0 }

func (d *outputDevice) MaxReceivers() int { return 1 }

func (d *outputDevice) Transmitter() (contracts.Transmitter, error) {
	return nil, fmt.Errorf("%w: MIDI output %q cannot transmit", contracts.ErrUnsupportedDirection, d.name)
}

func (d *outputDevice) Receiver() (contracts.Receiver, error) {
	return &outputReceiver{deviceID: d.id, name: d.name}, nil
}

type outputReceiver struct {
	deviceID uint32
	name     string

	mu     sync.Mutex
	handle windows.Handle
	opened bool
}

// Deliver sends the bytes to the device. winmm schedules nothing itself, so
// the timestamp is ignored and delivery is immediate.
func (r *outputReceiver) Deliver(data []byte, timestampMicros int64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty message", contracts.ErrMalformedMessage)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened {
		r1, _, err := procMidiOutOpen.Call(
			uintptr(unsafe.Pointer(&r.handle)),
			uintptr(r.deviceID),
			0, 0, 0,
		)
		if r1 != 0 {
			return fmt.Errorf("opening MIDI output %q: %v", r.name, err)
		}
		r.opened = true
	}

	if data[0] == contracts.StatusSysExStart {
		return r.sendLong(data)
	}

	var dword uint32
	for i := len(data) - 1; i >= 0; i-- {
		dword = dword<<8 | uint32(data[i])
	}
	r1, _, err := procMidiOutShortMsg.Call(uintptr(r.handle), uintptr(dword))
	if r1 != 0 {
		return fmt.Errorf("sending short message to %q: %v", r.name, err)
	}
	return nil
}

func (r *outputReceiver) sendLong(data []byte) error {
	hdr := midiHdr{
		lpData:         uintptr(unsafe.Pointer(&data[0])),
		dwBufferLength: uint32(len(data)),
	}
	hdrSize := unsafe.Sizeof(hdr)

	r1, _, err := procMidiOutPrepareHdr.Call(uintptr(r.handle), uintptr(unsafe.Pointer(&hdr)), hdrSize)
	if r1 != 0 {
		return fmt.Errorf("preparing sysex buffer for %q: %v", r.name, err)
	}
	defer procMidiOutUnprepHdr.Call(uintptr(r.handle), uintptr(unsafe.Pointer(&hdr)), hdrSize)

	r1, _, err = procMidiOutLongMsg.Call(uintptr(r.handle), uintptr(unsafe.Pointer(&hdr)), hdrSize)
	if r1 != 0 {
		return fmt.Errorf("sending sysex message to %q: %v", r.name, err)
	}
	// Block until the driver releases the buffer; sysex sends are
	// asynchronous and the header must stay prepared meanwhile.
	for hdr.dwFlags&mhdrDone == 0 {
		windows.SleepEx(1, false)
	}
	return nil
}

func (r *outputReceiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.opened {
		return nil
	}
	r.opened = false
	r1, _, err := procMidiOutClose.Call(uintptr(r.handle))
	r.handle = 0
	if r1 != 0 {
		return fmt.Errorf("closing MIDI output %q: %v", r.name, err)
	}
	return nil
}
