// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/imu"
)

// RegisterDevice is what the register debug tool needs from the sensor.
// *sensors.Manager implements it.
type RegisterDevice interface {
	RegisterMap() []bno055.RegisterInfo
	ReadRegister(reg byte) (byte, error)
	ReadAllRegisters() (map[byte]byte, error)
	WriteRegister(reg, v byte) error
	SetMode(mode bno055.OperatingMode) error
	SetAngleUnits(u bno055.AngleUnit) error
	SetAccelerationUnits(u bno055.AccelUnit) error
	Units() (bno055.AngleUnit, bno055.AccelUnit, error)
	ReadSample() (imu.Sample, error)
}

// RegisterDebugHandler serves the register debug websocket and the live
// sample endpoint.
type RegisterDebugHandler struct {
	dev      RegisterDevice
	writable func(reg byte) bool
}

// NewRegisterDebugHandler returns a handler for dev. Raw writes are refused
// for registers writable does not accept.
func NewRegisterDebugHandler(dev RegisterDevice, writable func(reg byte) bool) *RegisterDebugHandler {
	return &RegisterDebugHandler{dev: dev, writable: writable}
}

// RegisterCommand is a message sent by the client. Addr and Value are hex
// strings such as "0x3D".
type RegisterCommand struct {
	Action string `json:"action"` // get_map, read, read_all, write, set_mode, set_units, export_config
	Addr   string `json:"addr,omitempty"`
	Value  string `json:"value,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Angle  string `json:"angle,omitempty"`
	Accel  string `json:"accel,omitempty"`
}

// RegisterResponse is a message sent to the client.
type RegisterResponse struct {
	Type        string            `json:"type"` // "register_data", "register_map", "status", "export_config", "error"
	Address     string            `json:"addr,omitempty"`
	Value       string            `json:"value,omitempty"`
	Registers   map[string]string `json:"registers,omitempty"`
	Timestamp   string            `json:"timestamp,omitempty"`
	Message     string            `json:"message,omitempty"`
	AngleUnit   string            `json:"angle_unit,omitempty"`
	AccelUnit   string            `json:"accel_unit,omitempty"`
	RegisterMap []RegisterInfo    `json:"register_map,omitempty"`
	Config      string            `json:"config,omitempty"`
	Filename    string            `json:"filename,omitempty"`
}

// RegisterInfo is a register map entry with its address in hex.
type RegisterInfo struct {
	Address string `json:"address"`
	bno055.RegisterInfo
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// HandleWS handles the WebSocket connection for register debugging.
func (h *RegisterDebugHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("register_debug: websocket upgrade error")
		return
	}
	defer conn.Close()

	// Send register map on connection
	if err := conn.WriteJSON(h.registerMap()); err != nil {
		log.WithError(err).Warn("register_debug: error sending register map")
		return
	}

	for {
		var cmd RegisterCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("register_debug: websocket error")
			}
			return
		}
		if err := conn.WriteJSON(h.handle(cmd)); err != nil {
			log.WithError(err).Warn("register_debug: write error")
			return
		}
	}
}

// handle runs one command and returns the reply.
func (h *RegisterDebugHandler) handle(cmd RegisterCommand) RegisterResponse {
	switch cmd.Action {
	case "get_map":
		return h.registerMap()
	case "read":
		return h.handleRead(cmd)
	case "read_all":
		return h.handleReadAll()
	case "write":
		return h.handleWrite(cmd)
	case "set_mode":
		return h.handleSetMode(cmd)
	case "set_units":
		return h.handleSetUnits(cmd)
	case "export_config":
		return h.handleExportConfig()
	case "":
		return errorResponse("missing or invalid action field")
	default:
		return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func (h *RegisterDebugHandler) handleRead(cmd RegisterCommand) RegisterResponse {
	reg, err := parseHexByte(cmd.Addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %q", cmd.Addr))
	}
	value, err := h.dev.ReadRegister(reg)
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Address:   hexByte(reg),
		Value:     hexByte(value),
		Timestamp: now(),
	}
}

func (h *RegisterDebugHandler) handleReadAll() RegisterResponse {
	registers, err := h.dev.ReadAllRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("read all error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Registers: hexMap(registers),
		Timestamp: now(),
	}
}

func (h *RegisterDebugHandler) handleWrite(cmd RegisterCommand) RegisterResponse {
	reg, err := parseHexByte(cmd.Addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %q", cmd.Addr))
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %q", cmd.Value))
	}
	// set_units keeps the driver scaling in step with the register.
	if reg == bno055.RegUnitSel {
		return errorResponse("UNIT_SEL is written with set_units")
	}
	if h.writable == nil || !h.writable(reg) {
		return errorResponse(fmt.Sprintf("register 0x%02X not in allowed write ranges", reg))
	}
	if err := h.dev.WriteRegister(reg, value); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}
	log.WithFields(log.Fields{"reg": hexByte(reg), "value": hexByte(value)}).Info("register_debug: register written")
	return RegisterResponse{
		Type:      "register_data",
		Address:   hexByte(reg),
		Value:     hexByte(value),
		Timestamp: now(),
		Message:   "write successful",
	}
}

func (h *RegisterDebugHandler) handleSetMode(cmd RegisterCommand) RegisterResponse {
	if cmd.Mode != "ndof" && cmd.Mode != "NDOF" {
		return errorResponse(fmt.Sprintf("unsupported mode %q", cmd.Mode))
	}
	if err := h.dev.SetMode(bno055.ModeNDOF); err != nil {
		return errorResponse(fmt.Sprintf("set mode error: %v", err))
	}
	return RegisterResponse{Type: "status", Message: "mode set to NDOF", Timestamp: now()}
}

func (h *RegisterDebugHandler) handleSetUnits(cmd RegisterCommand) RegisterResponse {
	if cmd.Angle == "" && cmd.Accel == "" {
		return errorResponse("missing angle or accel field")
	}
	if cmd.Angle != "" {
		u, err := bno055.ParseAngleUnit(cmd.Angle)
		if err != nil {
			return errorResponse(err.Error())
		}
		if err := h.dev.SetAngleUnits(u); err != nil {
			return errorResponse(fmt.Sprintf("set angle units error: %v", err))
		}
	}
	if cmd.Accel != "" {
		u, err := bno055.ParseAccelUnit(cmd.Accel)
		if err != nil {
			return errorResponse(err.Error())
		}
		if err := h.dev.SetAccelerationUnits(u); err != nil {
			return errorResponse(fmt.Sprintf("set acceleration units error: %v", err))
		}
	}
	angle, accel, err := h.dev.Units()
	if err != nil {
		return errorResponse(err.Error())
	}
	return RegisterResponse{
		Type:      "status",
		Message:   "units updated",
		AngleUnit: angle.String(),
		AccelUnit: accel.String(),
		Timestamp: now(),
	}
}

func (h *RegisterDebugHandler) handleExportConfig() RegisterResponse {
	registers, err := h.dev.ReadAllRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	// Only writable registers are worth restoring.
	writable := make(map[byte]byte)
	for _, info := range h.dev.RegisterMap() {
		if info.Access == "R" {
			continue
		}
		if v, ok := registers[info.Address]; ok {
			writable[info.Address] = v
		}
	}

	t := time.Now()
	configJSON, err := json.Marshal(RegisterConfigFile{
		Version:   1,
		Device:    "bno055",
		Timestamp: t.Format(time.RFC3339),
		Registers: hexMap(writable),
	})
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}
	return RegisterResponse{
		Type:     "export_config",
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("bno055_%s_registers.json", t.Format("20060102_150405")),
	}
}

func (h *RegisterDebugHandler) registerMap() RegisterResponse {
	regs := h.dev.RegisterMap()
	mapped := make([]RegisterInfo, len(regs))
	for i, r := range regs {
		mapped[i] = RegisterInfo{Address: hexByte(r.Address), RegisterInfo: r}
	}
	return RegisterResponse{Type: "register_map", RegisterMap: mapped}
}

// HandleSensorData serves one fresh sample as JSON.
func (h *RegisterDebugHandler) HandleSensorData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	s, err := h.dev.ReadSample()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	if err := json.NewEncoder(w).Encode(s); err != nil {
		log.WithError(err).Warn("register_debug: json encode error")
	}
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

func parseHexByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func hexByte(b byte) string { return fmt.Sprintf("0x%02X", b) }

func hexMap(m map[byte]byte) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[hexByte(k)] = hexByte(v)
	}
	return out
}

func now() string { return time.Now().Format(time.RFC3339) }
