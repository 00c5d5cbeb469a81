// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
)

// ErrNotInitialized is returned by Manager methods before Init or Attach.
var ErrNotInitialized = errors.New("sensors: BNO055 not initialized")

// lastRegister is the highest page 0 register the dump covers.
const lastRegister = 0x42

// Manager owns the BNO055 of this process. Every driver call runs under one
// mutex, so the producer loop, the web handlers and the register debug tool
// can share it.
type Manager struct {
	mu     sync.Mutex
	name   string
	cfg    *config.Config
	bus    *LockedBus
	closer io.Closer
	dev    *bno055.Dev
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process wide manager, configured from config.Get().
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = NewManager("bno055", config.Get())
	})
	return manager
}

// NewManager returns an uninitialized manager.
func NewManager(name string, cfg *config.Config) *Manager {
	return &Manager{name: name, cfg: cfg}
}

// Init opens the configured transport and brings the sensor up. Calling it
// again after success does nothing.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev != nil {
		return nil
	}

	bus, err := OpenBus(m.cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", m.name, err)
	}
	if err := m.attach(bus); err != nil {
		bus.Close()
		return err
	}
	m.closer = bus
	return nil
}

// Attach brings the sensor up on an already open bus. The manager does not
// close it.
func (m *Manager) Attach(bus i2c.Bus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attach(bus)
}

// attach checks the chip ID, selects the configured units in CONFIG mode and
// switches to NDOF.
func (m *Manager) attach(bus i2c.Bus) error {
	locked := NewLockedBus(bus)
	dev := bno055.New(locked, m.cfg.BNO055I2CAddr)

	if id := dev.CheckID(); id != bno055.ChipID {
		return fmt.Errorf("%s: chip ID 0x%02X on %s, want 0x%02X", m.name, id, dev, bno055.ChipID)
	}
	err := dev.Reconfigure(func() error {
		if err := dev.SetAngleUnits(m.cfg.BNO055AngleUnits); err != nil {
			return fmt.Errorf("set angle units: %w", err)
		}
		if err := dev.SetAccelerationUnits(m.cfg.BNO055AccelUnits); err != nil {
			return fmt.Errorf("set acceleration units: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", m.name, err)
	}
	dev.SetMode(bno055.ModeNDOF)

	log.WithFields(log.Fields{
		"sensor": m.name,
		"bus":    bus.String(),
		"addr":   fmt.Sprintf("0x%02X", dev.Addr()),
		"angle":  dev.AngleUnits(),
		"accel":  dev.AccelerationUnits(),
	}).Info("BNO055 ready in NDOF mode")

	m.bus = locked
	m.dev = dev
	return nil
}

// IsAvailable reports whether the sensor was brought up.
func (m *Manager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev != nil
}

// SharedBus returns the serialized bus the sensor sits on, for other devices
// wired to the same bus.
func (m *Manager) SharedBus() (i2c.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil, ErrNotInitialized
	}
	return m.bus, nil
}

// Close releases the bus opened by Init.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dev = nil
	m.bus = nil
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

// with runs fn on the device under the manager lock.
func (m *Manager) with(fn func(d *bno055.Dev) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return ErrNotInitialized
	}
	return fn(m.dev)
}

// ReadSample reads accel, gyro, mag and Euler angles in one burst.
func (m *Manager) ReadSample() (imu.Sample, error) {
	var s imu.Sample
	err := m.with(func(d *bno055.Dev) error {
		r, err := d.Sense()
		if err != nil {
			return fmt.Errorf("%s: sense: %w", m.name, err)
		}
		s = imu.FromReading(m.name, time.Now(), r)
		return nil
	})
	return s, err
}

// NextSample implements imu.Source.
func (m *Manager) NextSample() (imu.Sample, error) { return m.ReadSample() }

// EulerAngles implements orientation.EulerReader.
func (m *Manager) EulerAngles() (bno055.Euler, error) {
	var e bno055.Euler
	err := m.with(func(d *bno055.Dev) error {
		var err error
		e, err = d.EulerAngles()
		return err
	})
	return e, err
}

// AngleUnits implements orientation.EulerReader. It returns Degrees before
// Init.
func (m *Manager) AngleUnits() bno055.AngleUnit {
	u := bno055.Degrees
	m.with(func(d *bno055.Dev) error {
		u = d.AngleUnits()
		return nil
	})
	return u
}

// Units returns the cached angle and acceleration units.
func (m *Manager) Units() (bno055.AngleUnit, bno055.AccelUnit, error) {
	var (
		a  bno055.AngleUnit
		ac bno055.AccelUnit
	)
	err := m.with(func(d *bno055.Dev) error {
		a, ac = d.AngleUnits(), d.AccelerationUnits()
		return nil
	})
	return a, ac, err
}

// SetMode selects an operating mode.
func (m *Manager) SetMode(mode bno055.OperatingMode) error {
	return m.with(func(d *bno055.Dev) error {
		d.SetMode(mode)
		return nil
	})
}

// SetAngleUnits selects the Euler and gyroscope unit. The device passes
// through CONFIG mode and returns to its previous mode.
func (m *Manager) SetAngleUnits(u bno055.AngleUnit) error {
	return m.with(func(d *bno055.Dev) error {
		return d.Reconfigure(func() error { return d.SetAngleUnits(u) })
	})
}

// SetAccelerationUnits selects the acceleration unit, like SetAngleUnits.
func (m *Manager) SetAccelerationUnits(u bno055.AccelUnit) error {
	return m.with(func(d *bno055.Dev) error {
		return d.Reconfigure(func() error { return d.SetAccelerationUnits(u) })
	})
}

// ReadRegister reads one raw register.
func (m *Manager) ReadRegister(reg byte) (byte, error) {
	var v byte
	err := m.with(func(d *bno055.Dev) error {
		var err error
		v, err = d.ReadRegister(reg)
		return err
	})
	return v, err
}

// WriteRegister writes one raw register. Configuration registers are written
// in CONFIG mode. Writes to UNIT_SEL bypass the unit cache of the driver; use
// SetAngleUnits or SetAccelerationUnits instead.
func (m *Manager) WriteRegister(reg, v byte) error {
	return m.with(func(d *bno055.Dev) error {
		if bno055.WritableInAnyMode(reg) {
			return d.WriteRegister(reg, v)
		}
		return d.Reconfigure(func() error { return d.WriteRegister(reg, v) })
	})
}

// ReadAllRegisters dumps page 0 up to AXIS_MAP_SIGN in one burst.
func (m *Manager) ReadAllRegisters() (map[byte]byte, error) {
	var buf [lastRegister + 1]byte
	if err := m.with(func(d *bno055.Dev) error { return d.ReadRegisters(0x00, buf[:]) }); err != nil {
		return nil, err
	}
	out := make(map[byte]byte, len(buf))
	for i, v := range buf {
		out[byte(i)] = v
	}
	return out, nil
}

// RegisterMap returns the register metadata of the BNO055.
func (m *Manager) RegisterMap() []bno055.RegisterInfo {
	return bno055.RegisterMap()
}
