// Package gomidi bridges hardware MIDI inputs to the engine's device
// contract through rtmidi.
package gomidi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/midi"
)

type (
	// Context owns the rtmidi driver and enumerates input ports. A nil
	// driver means no MIDI backend is available on this system; the
	// context still works, it just lists no devices.
	Context struct {
		driver  *rtmididrv.Driver
		now     func() float64
		devices []*Device
		listed  bool
	}

	// Device wraps one rtmidi input port as a midi.Device. Events are
	// stamped with the engine clock at arrival and fanned out to every
	// subscriber.
	Device struct {
		midi.Dispatcher
		context *Context
		in      drivers.In
		stop    func()
	}
)

func newDevice(c *Context, in drivers.In) *Device {
	return &Device{context: c, in: in}
}

// NewContext opens the rtmidi driver. Failure to load the backend is
// not an error: the context reports no devices.
func NewContext(now func() float64) *Context {
	c := &Context{now: now}
	c.driver, _ = rtmididrv.New()
	return c
}

// Devices lists the system's MIDI input ports. The list is cached after
// the first successful enumeration.
func (c *Context) Devices() []*Device {
	if c.listed {
		return c.devices
	}
	if c.driver == nil {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return nil
	}
	for _, in := range ins {
		c.devices = append(c.devices, newDevice(c, in))
	}
	c.listed = true
	return c.devices
}

// Find returns the input port with the given name.
func (c *Context) Find(name string) (*Device, error) {
	for _, d := range c.Devices() {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: no MIDI input named %q", cadenza.ErrMIDI, name)
}

// Close closes every open port and releases the driver.
func (c *Context) Close() {
	if c.driver == nil {
		return
	}
	for _, d := range c.devices {
		d.Close()
	}
	c.driver.Close()
}

func (d *Device) Name() string { return d.in.String() }

// Open starts listening on the port. Opening an already open device is
// a no-op.
func (d *Device) Open() error {
	if d.in.IsOpen() {
		return nil
	}
	if err := d.in.Open(); err != nil {
		return fmt.Errorf("%w: opening input %q: %v", cadenza.ErrMIDI, d.Name(), err)
	}
	stop, err := gomidi.ListenTo(d.in, d.handle)
	if err != nil {
		d.in.Close()
		return fmt.Errorf("%w: listening on input %q: %v", cadenza.ErrMIDI, d.Name(), err)
	}
	d.stop = stop
	return nil
}

// Close stops listening and closes the port.
func (d *Device) Close() error {
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
	if d.in.IsOpen() {
		return d.in.Close()
	}
	return nil
}

// handle translates gomidi note messages to device events; everything
// else on the wire is dropped.
func (d *Device) handle(msg gomidi.Message, timestampms int32) {
	var channel, key, velocity uint8
	var m midi.Message
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		m = midi.NewNoteOn(channel, cadenza.Note(key), float64(velocity)/127)
	case msg.GetNoteOff(&channel, &key, &velocity):
		m = midi.NewNoteOff(channel, cadenza.Note(key))
	default:
		return
	}
	d.Dispatch(midi.Event{Time: d.context.now(), Message: m})
}
