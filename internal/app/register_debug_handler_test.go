package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
)

// fakeDevice is an in-memory BNO055 register file.
type fakeDevice struct {
	regs  map[byte]byte
	angle bno055.AngleUnit
	accel bno055.AccelUnit
	mode  bno055.OperatingMode
	err   error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{regs: map[byte]byte{0x00: 0xA0, 0x3B: 0x80, 0x3D: 0x0C, 0x41: 0x24}}
}

func (d *fakeDevice) RegisterMap() []bno055.RegisterInfo { return bno055.RegisterMap() }

func (d *fakeDevice) ReadRegister(reg byte) (byte, error) {
	if d.err != nil {
		return 0, d.err
	}
	return d.regs[reg], nil
}

func (d *fakeDevice) ReadAllRegisters() (map[byte]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[byte]byte)
	for r := byte(0); r <= 0x42; r++ {
		out[r] = d.regs[r]
	}
	return out, nil
}

func (d *fakeDevice) WriteRegister(reg, v byte) error {
	if d.err != nil {
		return d.err
	}
	d.regs[reg] = v
	return nil
}

func (d *fakeDevice) SetMode(mode bno055.OperatingMode) error {
	d.mode = mode
	return d.err
}

func (d *fakeDevice) SetAngleUnits(u bno055.AngleUnit) error {
	if d.err != nil {
		return d.err
	}
	d.angle = u
	return nil
}

func (d *fakeDevice) SetAccelerationUnits(u bno055.AccelUnit) error {
	if d.err != nil {
		return d.err
	}
	d.accel = u
	return nil
}

func (d *fakeDevice) Units() (bno055.AngleUnit, bno055.AccelUnit, error) {
	return d.angle, d.accel, nil
}

func (d *fakeDevice) ReadSample() (imu.Sample, error) {
	if d.err != nil {
		return imu.Sample{}, d.err
	}
	return imu.Sample{Source: "bno055", Heading: 90, AngleUnit: "deg"}, nil
}

func newTestHandler(t *testing.T, ranges string) (*RegisterDebugHandler, *fakeDevice) {
	t.Helper()
	cfg := config.Default()
	var err error
	cfg.RegisterDebugWritable, err = config.ParseRegisterRanges(ranges)
	require.NoError(t, err)
	dev := newFakeDevice()
	return NewRegisterDebugHandler(dev, cfg.Writable), dev
}

func TestRegisterDebugRead(t *testing.T) {
	h, _ := newTestHandler(t, "")

	resp := h.handle(RegisterCommand{Action: "read", Addr: "0x3D"})
	assert.Equal(t, "register_data", resp.Type)
	assert.Equal(t, "0x3D", resp.Address)
	assert.Equal(t, "0x0C", resp.Value)

	resp = h.handle(RegisterCommand{Action: "read", Addr: "zz"})
	assert.Equal(t, "error", resp.Type)
}

func TestRegisterDebugReadAll(t *testing.T) {
	h, _ := newTestHandler(t, "")

	resp := h.handle(RegisterCommand{Action: "read_all"})
	assert.Equal(t, "register_data", resp.Type)
	assert.Len(t, resp.Registers, 0x43)
	assert.Equal(t, "0xA0", resp.Registers["0x00"])
}

func TestRegisterDebugWriteRanges(t *testing.T) {
	h, dev := newTestHandler(t, "0x3B,0x3D,0x41-0x42")

	resp := h.handle(RegisterCommand{Action: "write", Addr: "0x41", Value: "0x21"})
	assert.Equal(t, "register_data", resp.Type)
	assert.Equal(t, byte(0x21), dev.regs[0x41])

	resp = h.handle(RegisterCommand{Action: "write", Addr: "0x3F", Value: "0x20"})
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Message, "not in allowed write ranges")
	assert.NotContains(t, dev.regs, byte(0x3F))

	// UNIT_SEL stays behind set_units even when listed.
	resp = h.handle(RegisterCommand{Action: "write", Addr: hexByte(bno055.RegUnitSel), Value: "0x86"})
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, byte(0x80), dev.regs[0x3B])

	resp = h.handle(RegisterCommand{Action: "write", Addr: "0x41", Value: "0x100"})
	assert.Equal(t, "error", resp.Type)
}

func TestRegisterDebugNoRangesNoWrites(t *testing.T) {
	h, dev := newTestHandler(t, "")
	resp := h.handle(RegisterCommand{Action: "write", Addr: "0x3D", Value: "0x00"})
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, byte(0x0C), dev.regs[0x3D])
}

func TestRegisterDebugSetModeAndUnits(t *testing.T) {
	h, dev := newTestHandler(t, "")

	resp := h.handle(RegisterCommand{Action: "set_mode", Mode: "ndof"})
	assert.Equal(t, "status", resp.Type)
	assert.Equal(t, bno055.ModeNDOF, dev.mode)

	resp = h.handle(RegisterCommand{Action: "set_mode", Mode: "amg"})
	assert.Equal(t, "error", resp.Type)

	resp = h.handle(RegisterCommand{Action: "set_units", Angle: "rad", Accel: "mg"})
	assert.Equal(t, "status", resp.Type)
	assert.Equal(t, "rad", resp.AngleUnit)
	assert.Equal(t, "mg", resp.AccelUnit)

	resp = h.handle(RegisterCommand{Action: "set_units", Angle: "grad"})
	assert.Equal(t, "error", resp.Type)
	resp = h.handle(RegisterCommand{Action: "set_units"})
	assert.Equal(t, "error", resp.Type)
}

func TestRegisterDebugDeviceErrors(t *testing.T) {
	h, dev := newTestHandler(t, "0x3D")
	dev.err = errors.New("nak")

	for _, cmd := range []RegisterCommand{
		{Action: "read", Addr: "0x00"},
		{Action: "read_all"},
		{Action: "write", Addr: "0x3D", Value: "0x0C"},
		{Action: "set_units", Angle: "deg"},
		{Action: "export_config"},
	} {
		resp := h.handle(cmd)
		assert.Equal(t, "error", resp.Type, cmd.Action)
		assert.Contains(t, resp.Message, "nak", cmd.Action)
	}
}

func TestRegisterDebugExportConfig(t *testing.T) {
	h, _ := newTestHandler(t, "")

	resp := h.handle(RegisterCommand{Action: "export_config"})
	require.Equal(t, "export_config", resp.Type)
	assert.True(t, strings.HasPrefix(resp.Filename, "bno055_"))

	var file RegisterConfigFile
	require.NoError(t, json.Unmarshal([]byte(resp.Config), &file))
	assert.Equal(t, 1, file.Version)
	assert.Equal(t, "0x0C", file.Registers["0x3D"])
	assert.Equal(t, "0x80", file.Registers["0x3B"])
	// Read-only registers are left out.
	assert.NotContains(t, file.Registers, "0x00")
}

func TestRegisterDebugUnknownAction(t *testing.T) {
	h, _ := newTestHandler(t, "")
	assert.Equal(t, "error", h.handle(RegisterCommand{Action: "reboot"}).Type)
	assert.Equal(t, "error", h.handle(RegisterCommand{}).Type)
}

func TestRegisterDebugWebSocket(t *testing.T) {
	h, _ := newTestHandler(t, "")
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var resp RegisterResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "register_map", resp.Type)
	require.NotEmpty(t, resp.RegisterMap)
	assert.Equal(t, "0x00", resp.RegisterMap[0].Address)
	assert.Equal(t, "CHIP_ID", resp.RegisterMap[0].Name)

	require.NoError(t, conn.WriteJSON(RegisterCommand{Action: "read", Addr: "0x00"}))
	resp = RegisterResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "0xA0", resp.Value)
}

func TestHandleSensorData(t *testing.T) {
	h, dev := newTestHandler(t, "")

	rec := httptest.NewRecorder()
	h.HandleSensorData(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var s imu.Sample
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, 90.0, s.Heading)

	dev.err = errors.New("nak")
	rec = httptest.NewRecorder()
	h.HandleSensorData(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "nak")
}
