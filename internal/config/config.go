// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

// Transports for the BNO055.
const (
	TransportI2C  = "i2c"
	TransportUART = "uart"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPose string
	TopicIMU  string

	// BNO055 hardware
	BNO055Transport  string // "i2c" or "uart"
	BNO055I2CBus     string // i2creg name, "" for the first bus
	BNO055I2CAddr    uint16
	BNO055SerialPort string
	BNO055BaudRate   uint

	// BNO055 output units
	BNO055AngleUnits bno055.AngleUnit
	BNO055AccelUnits bno055.AccelUnit

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Register debug tool
	RegisterDebugPort     int
	RegisterDebugWritable []RegisterRange

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "orientation" or "imu"

	// Logging
	LogLevel string
}

// RegisterRange is an inclusive range of register addresses.
type RegisterRange struct {
	First byte
	Last  byte
}

// Contains reports whether reg lies in the range.
func (r RegisterRange) Contains(reg byte) bool {
	return reg >= r.First && reg <= r.Last
}

// Package-level state for the process wide configuration. InitGlobal sets it
// once, Get reads it under a read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDProducer:  "orientation-producer",
		MQTTClientIDConsole:   "orientation-console",
		MQTTClientIDWeb:       "orientation-web",
		MQTTClientIDDisplay:   "orientation-display",
		TopicPose:             "inertial/pose",
		TopicIMU:              "inertial/imu",
		BNO055Transport:       TransportI2C,
		BNO055I2CAddr:         bno055.DefaultAddr,
		BNO055BaudRate:        115200,
		BNO055AngleUnits:      bno055.Degrees,
		BNO055AccelUnits:      bno055.MetersPerSecondSquared,
		IMUSampleInterval:     100,
		ConsoleLogInterval:    1000,
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 200,
		DisplayContent:        "orientation",
		LogLevel:              "info",
	}
}

// Load reads the configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_IMU":
		c.TopicIMU = value

	// BNO055 hardware
	case "BNO055_TRANSPORT":
		if value != TransportI2C && value != TransportUART {
			return fmt.Errorf("BNO055_TRANSPORT must be %q or %q, got %q", TransportI2C, TransportUART, value)
		}
		c.BNO055Transport = value
	case "BNO055_I2C_BUS":
		c.BNO055I2CBus = value
	case "BNO055_I2C_ADDR":
		addr, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("invalid BNO055_I2C_ADDR %q: %w", value, err)
		}
		if addr != bno055.DefaultAddr && addr != bno055.AlternateAddr {
			return fmt.Errorf("BNO055_I2C_ADDR must be 0x28 or 0x29, got 0x%02X", addr)
		}
		c.BNO055I2CAddr = addr
	case "BNO055_SERIAL_PORT":
		c.BNO055SerialPort = value
	case "BNO055_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid BNO055_BAUD_RATE %q: %w", value, err)
		}
		c.BNO055BaudRate = uint(rate)

	// BNO055 output units
	case "BNO055_ANGLE_UNITS":
		u, err := bno055.ParseAngleUnit(value)
		if err != nil {
			return fmt.Errorf("invalid BNO055_ANGLE_UNITS: %w", err)
		}
		c.BNO055AngleUnits = u
	case "BNO055_ACCEL_UNITS":
		u, err := bno055.ParseAccelUnit(value)
		if err != nil {
			return fmt.Errorf("invalid BNO055_ACCEL_UNITS: %w", err)
		}
		c.BNO055AccelUnits = u

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Register debug tool
	case "REGISTER_DEBUG_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_PORT %q: %w", value, err)
		}
		c.RegisterDebugPort = port
	case "REGISTER_DEBUG_WRITABLE":
		ranges, err := ParseRegisterRanges(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_WRITABLE: %w", err)
		}
		c.RegisterDebugWritable = ranges

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = addr
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_CONTENT":
		if value != "orientation" && value != "imu" {
			return fmt.Errorf("DISPLAY_CONTENT must be orientation or imu, got %q", value)
		}
		c.DisplayContent = value

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.BNO055Transport == TransportUART && c.BNO055SerialPort == "" {
		return fmt.Errorf("BNO055_SERIAL_PORT is required with BNO055_TRANSPORT=uart")
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL must be positive")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive")
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// Writable reports whether the register debug tool may write reg. No ranges
// means no writes.
func (c *Config) Writable(reg byte) bool {
	for _, r := range c.RegisterDebugWritable {
		if r.Contains(reg) {
			return true
		}
	}
	return false
}

// ParseRegisterRanges parses a list such as "0x3B,0x3D-0x42".
func ParseRegisterRanges(s string) ([]RegisterRange, error) {
	var out []RegisterRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		first, last, isRange := strings.Cut(part, "-")
		lo, err := strconv.ParseUint(strings.TrimSpace(first), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("register %q: %w", first, err)
		}
		hi := lo
		if isRange {
			hi, err = strconv.ParseUint(strings.TrimSpace(last), 0, 8)
			if err != nil {
				return nil, fmt.Errorf("register %q: %w", last, err)
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("range %q is reversed", part)
		}
		out = append(out, RegisterRange{First: byte(lo), Last: byte(hi)})
	}
	return out, nil
}

func parseAddr(value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(addr), nil
}

// InitGlobal initializes the global configuration from file. Only the first
// call loads; later calls do nothing.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
