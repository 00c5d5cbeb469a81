package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# minimal\nMQTT_BROKER=tcp://localhost:1883\n"))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, TransportI2C, cfg.BNO055Transport)
	assert.Equal(t, bno055.DefaultAddr, cfg.BNO055I2CAddr)
	assert.Equal(t, bno055.Degrees, cfg.BNO055AngleUnits)
	assert.Equal(t, bno055.MetersPerSecondSquared, cfg.BNO055AccelUnits)
	assert.Equal(t, 100, cfg.IMUSampleInterval)
	assert.Empty(t, cfg.RegisterDebugWritable)
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
MQTT_BROKER=tcp://broker:1883
TOPIC_POSE=a/pose
BNO055_TRANSPORT=uart
BNO055_SERIAL_PORT=/dev/ttyUSB0
BNO055_BAUD_RATE=115200
BNO055_I2C_ADDR=0x29
BNO055_ANGLE_UNITS=rad
BNO055_ACCEL_UNITS=mg
IMU_SAMPLE_INTERVAL=20
REGISTER_DEBUG_WRITABLE=0x3B, 0x3D-0x3F
DISPLAY_I2C_ADDR=0x3D
DISPLAY_CONTENT=imu
LOG_LEVEL=debug
`))
	require.NoError(t, err)

	assert.Equal(t, "a/pose", cfg.TopicPose)
	assert.Equal(t, TransportUART, cfg.BNO055Transport)
	assert.Equal(t, "/dev/ttyUSB0", cfg.BNO055SerialPort)
	assert.Equal(t, uint(115200), cfg.BNO055BaudRate)
	assert.Equal(t, bno055.AlternateAddr, cfg.BNO055I2CAddr)
	assert.Equal(t, bno055.Radians, cfg.BNO055AngleUnits)
	assert.Equal(t, bno055.Milligee, cfg.BNO055AccelUnits)
	assert.Equal(t, 20, cfg.IMUSampleInterval)
	assert.Equal(t, uint16(0x3D), cfg.DisplayI2CAddr)
	assert.Equal(t, "imu", cfg.DisplayContent)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.True(t, cfg.Writable(0x3B))
	assert.False(t, cfg.Writable(0x3C))
	assert.True(t, cfg.Writable(0x3E))
	assert.False(t, cfg.Writable(0x40))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing broker", "TOPIC_POSE=x\n"},
		{"no equals", "MQTT_BROKER\n"},
		{"unknown key", "MQTT_BROKER=x\nFOO=1\n"},
		{"bad address", "MQTT_BROKER=x\nBNO055_I2C_ADDR=0x30\n"},
		{"bad transport", "MQTT_BROKER=x\nBNO055_TRANSPORT=spi\n"},
		{"uart without port", "MQTT_BROKER=x\nBNO055_TRANSPORT=uart\n"},
		{"bad angle unit", "MQTT_BROKER=x\nBNO055_ANGLE_UNITS=grad\n"},
		{"bad interval", "MQTT_BROKER=x\nIMU_SAMPLE_INTERVAL=fast\n"},
		{"zero interval", "MQTT_BROKER=x\nIMU_SAMPLE_INTERVAL=0\n"},
		{"bad ranges", "MQTT_BROKER=x\nREGISTER_DEBUG_WRITABLE=0x40-0x3B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestParseRegisterRanges(t *testing.T) {
	ranges, err := ParseRegisterRanges("0x3B,0x3D-0x42, 7")
	require.NoError(t, err)
	assert.Equal(t, []RegisterRange{{0x3B, 0x3B}, {0x3D, 0x42}, {7, 7}}, ranges)

	ranges, err = ParseRegisterRanges("")
	require.NoError(t, err)
	assert.Empty(t, ranges)

	_, err = ParseRegisterRanges("0x100")
	assert.Error(t, err)
	_, err = ParseRegisterRanges("zz-0x10")
	assert.Error(t, err)
}
