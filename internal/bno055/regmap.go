// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bno055

// BitField describes a field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo describes one register of the page 0 map.
type RegisterInfo struct {
	Address     byte       `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterMap returns the metadata of the page 0 registers, sorted by
// address.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: 0x00, Name: "CHIP_ID", Description: "Chip identification", Access: "R", Default: "0xA0"},
		{Address: 0x01, Name: "ACC_ID", Description: "Accelerometer identification", Access: "R", Default: "0xFB"},
		{Address: 0x02, Name: "MAG_ID", Description: "Magnetometer identification", Access: "R", Default: "0x32"},
		{Address: 0x03, Name: "GYR_ID", Description: "Gyroscope identification", Access: "R", Default: "0x0F"},
		{Address: 0x04, Name: "SW_REV_ID_LSB", Description: "Firmware revision LSB", Access: "R"},
		{Address: 0x05, Name: "SW_REV_ID_MSB", Description: "Firmware revision MSB", Access: "R"},
		{Address: 0x06, Name: "BL_REV_ID", Description: "Bootloader revision", Access: "R"},
		{Address: 0x07, Name: "PAGE_ID", Description: "Register page", Access: "RW", Default: "0x00"},

		{Address: 0x08, Name: "ACC_DATA_X_LSB", Description: "Acceleration X LSB", Access: "R"},
		{Address: 0x09, Name: "ACC_DATA_X_MSB", Description: "Acceleration X MSB", Access: "R"},
		{Address: 0x0A, Name: "ACC_DATA_Y_LSB", Description: "Acceleration Y LSB", Access: "R"},
		{Address: 0x0B, Name: "ACC_DATA_Y_MSB", Description: "Acceleration Y MSB", Access: "R"},
		{Address: 0x0C, Name: "ACC_DATA_Z_LSB", Description: "Acceleration Z LSB", Access: "R"},
		{Address: 0x0D, Name: "ACC_DATA_Z_MSB", Description: "Acceleration Z MSB", Access: "R"},
		{Address: 0x0E, Name: "MAG_DATA_X_LSB", Description: "Magnetic field X LSB", Access: "R"},
		{Address: 0x0F, Name: "MAG_DATA_X_MSB", Description: "Magnetic field X MSB", Access: "R"},
		{Address: 0x10, Name: "MAG_DATA_Y_LSB", Description: "Magnetic field Y LSB", Access: "R"},
		{Address: 0x11, Name: "MAG_DATA_Y_MSB", Description: "Magnetic field Y MSB", Access: "R"},
		{Address: 0x12, Name: "MAG_DATA_Z_LSB", Description: "Magnetic field Z LSB", Access: "R"},
		{Address: 0x13, Name: "MAG_DATA_Z_MSB", Description: "Magnetic field Z MSB", Access: "R"},
		{Address: 0x14, Name: "GYR_DATA_X_LSB", Description: "Angular rate X LSB", Access: "R"},
		{Address: 0x15, Name: "GYR_DATA_X_MSB", Description: "Angular rate X MSB", Access: "R"},
		{Address: 0x16, Name: "GYR_DATA_Y_LSB", Description: "Angular rate Y LSB", Access: "R"},
		{Address: 0x17, Name: "GYR_DATA_Y_MSB", Description: "Angular rate Y MSB", Access: "R"},
		{Address: 0x18, Name: "GYR_DATA_Z_LSB", Description: "Angular rate Z LSB", Access: "R"},
		{Address: 0x19, Name: "GYR_DATA_Z_MSB", Description: "Angular rate Z MSB", Access: "R"},
		{Address: 0x1A, Name: "EUL_HEADING_LSB", Description: "Heading LSB", Access: "R"},
		{Address: 0x1B, Name: "EUL_HEADING_MSB", Description: "Heading MSB", Access: "R"},
		{Address: 0x1C, Name: "EUL_ROLL_LSB", Description: "Roll LSB", Access: "R"},
		{Address: 0x1D, Name: "EUL_ROLL_MSB", Description: "Roll MSB", Access: "R"},
		{Address: 0x1E, Name: "EUL_PITCH_LSB", Description: "Pitch LSB", Access: "R"},
		{Address: 0x1F, Name: "EUL_PITCH_MSB", Description: "Pitch MSB", Access: "R"},
		{Address: 0x20, Name: "QUA_DATA_W_LSB", Description: "Quaternion W LSB", Access: "R"},
		{Address: 0x21, Name: "QUA_DATA_W_MSB", Description: "Quaternion W MSB", Access: "R"},
		{Address: 0x22, Name: "QUA_DATA_X_LSB", Description: "Quaternion X LSB", Access: "R"},
		{Address: 0x23, Name: "QUA_DATA_X_MSB", Description: "Quaternion X MSB", Access: "R"},
		{Address: 0x24, Name: "QUA_DATA_Y_LSB", Description: "Quaternion Y LSB", Access: "R"},
		{Address: 0x25, Name: "QUA_DATA_Y_MSB", Description: "Quaternion Y MSB", Access: "R"},
		{Address: 0x26, Name: "QUA_DATA_Z_LSB", Description: "Quaternion Z LSB", Access: "R"},
		{Address: 0x27, Name: "QUA_DATA_Z_MSB", Description: "Quaternion Z MSB", Access: "R"},

		{Address: 0x34, Name: "TEMP", Description: "Temperature", Access: "R"},
		{Address: 0x35, Name: "CALIB_STAT", Description: "Calibration status", Access: "R",
			BitFields: []BitField{
				{Bits: "7:6", Name: "SYS", Description: "System calibration", Values: "0=Uncalibrated ... 3=Fully calibrated"},
				{Bits: "5:4", Name: "GYR", Description: "Gyroscope calibration", Values: "0-3"},
				{Bits: "3:2", Name: "ACC", Description: "Accelerometer calibration", Values: "0-3"},
				{Bits: "1:0", Name: "MAG", Description: "Magnetometer calibration", Values: "0-3"},
			}},
		{Address: 0x36, Name: "ST_RESULT", Description: "Self test result", Access: "R"},
		{Address: 0x37, Name: "INT_STA", Description: "Interrupt status", Access: "R"},
		{Address: 0x38, Name: "SYS_CLK_STATUS", Description: "System clock status", Access: "R"},
		{Address: 0x39, Name: "SYS_STATUS", Description: "System status", Access: "R",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SYS_STATUS", Description: "System state", Values: "0=Idle, 1=Error, 2=Init peripherals, 3=Init, 4=Self test, 5=Fusion running, 6=Running without fusion"},
			}},
		{Address: 0x3A, Name: "SYS_ERR", Description: "System error", Access: "R"},
		{Address: 0x3B, Name: "UNIT_SEL", Description: "Unit selection", Access: "RW", Default: "0x80",
			BitFields: []BitField{
				{Bits: "7", Name: "ORI_Android_Windows", Description: "Orientation convention", Values: "0=Windows, 1=Android"},
				{Bits: "4", Name: "TEMP_Unit", Description: "Temperature unit", Values: "0=Celsius, 1=Fahrenheit"},
				{Bits: "2", Name: "EUL_Unit", Description: "Euler angle unit", Values: "0=Degrees, 1=Radians"},
				{Bits: "1", Name: "GYR_Unit", Description: "Angular rate unit", Values: "0=dps, 1=rps"},
				{Bits: "0", Name: "ACC_Unit", Description: "Acceleration unit", Values: "0=m/s², 1=mg"},
			}},
		{Address: 0x3D, Name: "OPR_MODE", Description: "Operating mode", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3:0", Name: "Operation Mode", Description: "Sensor and fusion mode", Values: "0x0=CONFIG, 0x8=IMU, 0x9=COMPASS, 0xA=M4G, 0xB=NDOF_FMC_OFF, 0xC=NDOF"},
			}},
		{Address: 0x3E, Name: "PWR_MODE", Description: "Power mode", Access: "RW", Default: "0x00"},
		{Address: 0x3F, Name: "SYS_TRIGGER", Description: "System trigger", Access: "W"},
		{Address: 0x40, Name: "TEMP_SOURCE", Description: "Temperature source", Access: "RW"},
		{Address: 0x41, Name: "AXIS_MAP_CONFIG", Description: "Axis remap", Access: "RW", Default: "0x24"},
		{Address: 0x42, Name: "AXIS_MAP_SIGN", Description: "Axis sign", Access: "RW", Default: "0x00"},
	}
}
