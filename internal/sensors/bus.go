// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/serialbus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// OpenBus opens the transport the BNO055 is wired to.
func OpenBus(cfg *config.Config) (i2c.BusCloser, error) {
	if cfg.BNO055Transport == config.TransportUART {
		bus, err := serialbus.Open(cfg.BNO055SerialPort, cfg.BNO055BaudRate)
		if err != nil {
			return nil, err
		}
		return bus, nil
	}
	return OpenI2C(cfg.BNO055I2CBus)
}

// OpenI2C initializes the periph host drivers and opens an I²C bus by name.
// An empty name opens the first bus found.
func OpenI2C(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c open %q: %w", name, err)
	}
	return bus, nil
}

// LockedBus serializes transactions of every driver sharing one bus.
type LockedBus struct {
	mu  sync.Mutex
	bus i2c.Bus
}

// NewLockedBus wraps bus.
func NewLockedBus(bus i2c.Bus) *LockedBus {
	return &LockedBus{bus: bus}
}

func (l *LockedBus) String() string { return l.bus.String() }

// Tx implements i2c.Bus.
func (l *LockedBus) Tx(addr uint16, w, r []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus.
func (l *LockedBus) SetSpeed(f physic.Frequency) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.SetSpeed(f)
}
