// Package cli implements bno055ctl, a command line tool that talks to a
// BNO055 directly.
package cli

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// BusOpener opens the bus described by cfg.
type BusOpener func(cfg *config.Config) (i2c.BusCloser, error)

type options struct {
	configPath string
	transport  string
	bus        string
	addr       uint16
	port       string
	angle      string
	accel      string
	debug      bool
}

// NewRootCmd builds the bno055ctl command tree. open is called once per
// command; sensors.OpenBus is used when it is nil.
func NewRootCmd(open BusOpener) *cobra.Command {
	if open == nil {
		open = sensors.OpenBus
	}
	opts := &options{}

	root := &cobra.Command{
		Use:   "bno055ctl",
		Short: "inspect and configure a BNO055 orientation sensor",
		Long: `bno055ctl talks to a BNO055 over I²C or UART.
Bus settings come from the --config file when given, then from the flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "configuration file (optional)")
	pf.StringVar(&opts.transport, "transport", "", `transport, "i2c" or "uart"`)
	pf.StringVar(&opts.bus, "bus", "", "I²C bus name")
	pf.Uint16Var(&opts.addr, "addr", 0, "I²C address, 0x28 or 0x29")
	pf.StringVar(&opts.port, "port", "", "serial port for the uart transport")
	pf.BoolVar(&opts.debug, "debug", false, "toggle debug logging")

	run := func(fn func(d *bno055.Dev, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			bus, err := open(cfg)
			if err != nil {
				return err
			}
			defer bus.Close()
			return fn(bno055.New(bus, cfg.BNO055I2CAddr), cmd.OutOrStdout())
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "id",
			Short: "read and check the chip ID",
			Args:  cobra.NoArgs,
			RunE: run(func(d *bno055.Dev, out io.Writer) error {
				id := d.CheckID()
				if id != bno055.ChipID {
					return fmt.Errorf("chip ID 0x%02X on %s, want 0x%02X", id, d, bno055.ChipID)
				}
				fmt.Fprintf(out, "chip ID 0x%02X (BNO055) on %s\n", id, d)
				return nil
			}),
		},
		&cobra.Command{
			Use:       "mode ndof",
			Short:     "select the operating mode",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"ndof"},
			RunE: func(cmd *cobra.Command, args []string) error {
				if strings.ToLower(args[0]) != "ndof" {
					return fmt.Errorf("unsupported mode %q", args[0])
				}
				return run(func(d *bno055.Dev, out io.Writer) error {
					d.SetMode(bno055.ModeNDOF)
					fmt.Fprintf(out, "operating mode %s\n", bno055.ModeNDOF)
					return nil
				})(cmd, args)
			},
		},
		unitsCmd(run),
		readCmd(run, opts),
		&cobra.Command{
			Use:   "dump",
			Short: "print every page 0 register with its name",
			Args:  cobra.NoArgs,
			RunE:  run(dump),
		},
	)
	return root
}

// config loads the file when given and applies the flags on top.
func (o *options) config() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.transport != "" {
		cfg.BNO055Transport = o.transport
	}
	if o.bus != "" {
		cfg.BNO055I2CBus = o.bus
	}
	if o.addr != 0 {
		cfg.BNO055I2CAddr = o.addr
	}
	if o.port != "" {
		cfg.BNO055SerialPort = o.port
	}
	return cfg, nil
}

type runner func(fn func(d *bno055.Dev, out io.Writer) error) func(*cobra.Command, []string) error

func unitsCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "select the output units",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "angle deg|rad",
			Short: "select degrees or radians for Euler angles and angular rate",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				u, err := bno055.ParseAngleUnit(args[0])
				if err != nil {
					return err
				}
				return run(func(d *bno055.Dev, out io.Writer) error {
					if err := d.Reconfigure(func() error { return d.SetAngleUnits(u) }); err != nil {
						return err
					}
					fmt.Fprintf(out, "angle unit %s\n", d.AngleUnits())
					return nil
				})(c, args)
			},
		},
		&cobra.Command{
			Use:   "accel mps2|mg",
			Short: "select m/s² or milli-g for acceleration",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				u, err := bno055.ParseAccelUnit(args[0])
				if err != nil {
					return err
				}
				return run(func(d *bno055.Dev, out io.Writer) error {
					if err := d.Reconfigure(func() error { return d.SetAccelerationUnits(u) }); err != nil {
						return err
					}
					fmt.Fprintf(out, "acceleration unit %s\n", d.AccelerationUnits())
					return nil
				})(c, args)
			},
		},
	)
	return cmd
}

var readTargets = []string{"euler", "gyro", "accel", "mag", "quat", "temp", "heading", "roll", "pitch", "all"}

func readCmd(run runner, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read " + strings.Join(readTargets, "|"),
		Short: "read a measurement",
		Long: `read selects the units given by --angle and --accel, passing through
CONFIG mode, then reads the measurement. heading, roll and pitch read a single
axis each.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: readTargets,
		RunE: func(c *cobra.Command, args []string) error {
			target := args[0]
			angle, err := bno055.ParseAngleUnit(opts.angle)
			if err != nil {
				return err
			}
			accel, err := bno055.ParseAccelUnit(opts.accel)
			if err != nil {
				return err
			}
			return run(func(d *bno055.Dev, out io.Writer) error {
				setAngle, setAccel := false, false
				switch target {
				case "euler", "heading", "roll", "pitch", "gyro":
					setAngle = true
				case "accel":
					setAccel = true
				case "all":
					setAngle, setAccel = true, true
				}
				if setAngle || setAccel {
					err := d.Reconfigure(func() error {
						if setAngle {
							if err := d.SetAngleUnits(angle); err != nil {
								return err
							}
						}
						if setAccel {
							return d.SetAccelerationUnits(accel)
						}
						return nil
					})
					if err != nil {
						return err
					}
				}
				return read(d, target, out)
			})(c, args)
		},
	}
	cmd.Flags().StringVar(&opts.angle, "angle", "deg", "angle unit, deg or rad")
	cmd.Flags().StringVar(&opts.accel, "accel", "mps2", "acceleration unit, mps2 or mg")
	return cmd
}

func read(d *bno055.Dev, target string, out io.Writer) error {
	angle, accel := d.AngleUnits(), d.AccelerationUnits()
	switch target {
	case "euler":
		e, err := d.EulerAngles()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "heading=%.4f roll=%.4f pitch=%.4f %s\n", e.Heading, e.Roll, e.Pitch, angle)
	case "gyro":
		v, err := d.GyroData()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "gyro x=%.4f y=%.4f z=%.4f %s/s\n", v.X, v.Y, v.Z, angle)
	case "accel":
		v, err := d.Acceleration()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "accel x=%.4f y=%.4f z=%.4f %s\n", v.X, v.Y, v.Z, accel)
	case "mag":
		v, err := d.Magnetometer()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "mag x=%.4f y=%.4f z=%.4f uT\n", v.X, v.Y, v.Z)
	case "quat":
		q, err := d.Quaternion()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "quat w=%.5f x=%.5f y=%.5f z=%.5f\n", q.W, q.X, q.Y, q.Z)
	case "temp":
		t, err := d.Temperature()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "temp %s\n", t)
	case "heading":
		fmt.Fprintf(out, "heading=%.4f %s\n", d.ReadHeading(), angle)
	case "roll":
		fmt.Fprintf(out, "roll=%.4f %s\n", d.ReadRoll(), angle)
	case "pitch":
		fmt.Fprintf(out, "pitch=%.4f %s\n", d.ReadPitch(), angle)
	case "all":
		r, err := d.Sense()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "heading=%.4f roll=%.4f pitch=%.4f %s\n", r.Orientation.Heading, r.Orientation.Roll, r.Orientation.Pitch, angle)
		fmt.Fprintf(out, "gyro x=%.4f y=%.4f z=%.4f %s/s\n", r.Gyroscope.X, r.Gyroscope.Y, r.Gyroscope.Z, angle)
		fmt.Fprintf(out, "accel x=%.4f y=%.4f z=%.4f %s\n", r.Acceleration.X, r.Acceleration.Y, r.Acceleration.Z, accel)
		fmt.Fprintf(out, "mag x=%.4f y=%.4f z=%.4f uT\n", r.Magnetometer.X, r.Magnetometer.Y, r.Magnetometer.Z)
	default:
		return fmt.Errorf("unknown measurement %q, want one of %s", target, strings.Join(readTargets, ", "))
	}
	return nil
}

func dump(d *bno055.Dev, out io.Writer) error {
	regs := bno055.RegisterMap()
	last := regs[len(regs)-1].Address
	buf := make([]byte, int(last)+1)
	if err := d.ReadRegisters(0x00, buf); err != nil {
		return err
	}
	for _, r := range regs {
		fmt.Fprintf(out, "0x%02X %-18s 0x%02X\n", r.Address, r.Name, buf[r.Address])
	}
	return nil
}
