package io

import (
	"fmt"
	"iter"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/i8080/cpu"
)

// Device is a peripheral with one or more port registers. Registers are
// addressed by their index in Registers().
type Device interface {
	// Registers names the device's port registers.
	Registers() []string
	// In reads a register.
	In(reg int) (value uint8, err error)
	// Out writes a register.
	Out(reg int, value uint8) (err error)
}

type binding struct {
	name   string
	device Device
	reg    int
}

// Bus routes IN and OUT to the device registers attached to each port.
type Bus struct {
	Verbose bool               // If set, logs every port access.
	Log     logrus.FieldLogger // Port access logger.

	ports [256]*binding
}

var _ cpu.Ports = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus() (bus *Bus) {
	bus = &Bus{
		Log: logrus.StandardLogger(),
	}
	return
}

// Attach maps the registers of dev, in order, to ports. Every register
// needs a port, and no port may already be in use.
func (bus *Bus) Attach(name string, dev Device, ports ...uint8) (err error) {
	regs := dev.Registers()
	if len(regs) != len(ports) {
		err = ErrPortCount
		return
	}

	for n, port := range ports {
		if bus.ports[port] != nil || slices.Contains(ports[:n], port) {
			err = &ErrPort{Port: port, Err: ErrPortBusy}
			return
		}
	}

	for n, port := range ports {
		bus.ports[port] = &binding{
			name:   name + "_" + regs[n],
			device: dev,
			reg:    n,
		}
	}

	return
}

// Detach unmaps every port of dev.
func (bus *Bus) Detach(dev Device) {
	for port, bind := range bus.ports {
		if bind != nil && bind.device == dev {
			bus.ports[port] = nil
		}
	}
}

// Device returns the device attached to a port.
func (bus *Bus) Device(port uint8) (dev Device, ok bool) {
	bind := bus.ports[port]
	if bind == nil {
		return
	}
	return bind.device, true
}

// Defines returns an iterator of the port names, as assembler equates.
func (bus *Bus) Defines() iter.Seq2[string, string] {
	return func(yield func(name string, value string) bool) {
		for port, bind := range bus.ports {
			if bind == nil {
				continue
			}
			if !yield(bind.name, fmt.Sprintf("%d", port)) {
				return
			}
		}
	}
}

// In reads the register mapped to port.
func (bus *Bus) In(port uint8) (value uint8, err error) {
	bind := bus.ports[port]
	if bind == nil {
		err = &ErrPort{Port: port, Err: ErrPortUnmapped}
		return
	}

	value, err = bind.device.In(bind.reg)
	if err != nil {
		err = &ErrPort{Port: port, Err: err}
		return
	}

	if bus.Verbose {
		bus.Log.WithField("port", bind.name).Debugf("IN %02XH = %02XH", port, value)
	}

	return
}

// Out writes the register mapped to port.
func (bus *Bus) Out(port uint8, value uint8) (err error) {
	bind := bus.ports[port]
	if bind == nil {
		err = &ErrPort{Port: port, Write: true, Err: ErrPortUnmapped}
		return
	}

	if bus.Verbose {
		bus.Log.WithField("port", bind.name).Debugf("OUT %02XH, %02XH", port, value)
	}

	err = bind.device.Out(bind.reg, value)
	if err != nil {
		err = &ErrPort{Port: port, Write: true, Err: err}
		return
	}

	return
}
