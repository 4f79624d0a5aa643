package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/logger"
	"github.com/arloliu/go-lin/mcp2003a"
	"github.com/arloliu/go-lin/serialport"
)

var rootCmd = &cobra.Command{
	Use:          "lintool",
	Short:        "LIN bus master tool for MCP2003A transceivers",
	Long:         `Send breaks, wakeups and frames, read slave responses and run schedules through an MCP2003A wired to a serial port.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool(flagDebug); debug {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}

	return 0
}

const (
	flagPort            = "port"
	flagBaudrate        = "baudrate"
	flagBreakLine       = "break-line"
	flagActiveLow       = "active-low"
	flagBreakBits       = "break-bits"
	flagResponseTimeout = "response-timeout"
	flagInterFrameSpace = "inter-frame-space"
	flagDebug           = "debug"
)

func init() {
	addBusFlags(rootCmd.PersistentFlags())
}

// addBusFlags registers the flags shared by every bus command.
func addBusFlags(pf *pflag.FlagSet) {
	pf.StringP(flagPort, "p", "", "serial port the MCP2003A is wired to")
	pf.IntP(flagBaudrate, "b", 19200, "LIN bus speed (9600, 10400, 19200, 20000)")
	pf.String(flagBreakLine, "rts", "modem line driving the break (rts, dtr)")
	pf.Bool(flagActiveLow, false, "break line asserts when the modem bit is cleared")
	pf.Uint8(flagBreakBits, 0, "extra break bits above the 13 bit minimum")
	pf.Duration(flagResponseTimeout, 2*time.Millisecond, "wait between header and response parsing")
	pf.Duration(flagInterFrameSpace, time.Millisecond, "gap around every frame")
	pf.BoolP(flagDebug, "d", false, "debug mode")
}

var (
	yellow = color.New(color.FgHiYellow).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	cyan   = color.New(color.FgCyan).SprintfFunc()
)

// bus is an open transceiver together with the port backing it.
type bus struct {
	port *serialport.Port
	tr   *mcp2003a.Transceiver
}

func (b *bus) Close() error {
	return b.port.Close()
}

// timingProfile builds the timing profile from the persistent flags.
func timingProfile(cmd *cobra.Command) (lin.TimingProfile, error) {
	f := cmd.Flags()

	baud, _ := f.GetInt(flagBaudrate)
	speed, err := lin.ParseBusSpeed(baud)
	if err != nil {
		return lin.TimingProfile{}, err
	}

	breakBits, _ := f.GetUint8(flagBreakBits)
	responseTimeout, _ := f.GetDuration(flagResponseTimeout)
	interFrameSpace, _ := f.GetDuration(flagInterFrameSpace)

	p := lin.DefaultTimingProfile()
	p.Speed = speed
	p.Break = lin.Minimum13BitsPlus(breakBits)
	p.ResponseTimeout = lin.ResponseTimeoutFromDuration(responseTimeout)
	p.InterFrameSpace = lin.InterFrameSpaceFromDuration(interFrameSpace)

	return p, nil
}

// openBus opens the serial port named by the flags and wraps it in a
// transceiver configured with profile.
func openBus(cmd *cobra.Command, profile lin.TimingProfile) (*bus, error) {
	f := cmd.Flags()

	name, _ := f.GetString(flagPort)
	if name == "" || name == "*" {
		printPorts(cmd)
		return nil, errors.New("no port selected, use --port")
	}

	lineName, _ := f.GetString(flagBreakLine)
	line, err := serialport.ParseLine(lineName)
	if err != nil {
		return nil, err
	}
	activeLow, _ := f.GetBool(flagActiveLow)

	cfg, err := serialport.NewConfig(name,
		serialport.WithBusSpeed(profile.Speed),
		serialport.WithBreakLine(line),
		serialport.WithActiveLow(activeLow),
	)
	if err != nil {
		return nil, err
	}

	port, err := serialport.Open(cfg)
	if err != nil {
		return nil, err
	}

	tr, err := mcp2003a.New(port, port.BreakLine(), mcp2003a.PrecisionDelay{},
		mcp2003a.WithTimingProfile(profile),
	)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	logger.Debug("lintool: bus opened", "port", name, "profile", profile.String())

	return &bus{port: port, tr: tr}, nil
}

func printPorts(cmd *cobra.Command) {
	ports, err := serialport.ListPorts()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), red("list ports: %v", err))
		return
	}
	if len(ports) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no serial ports found")
		return
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "discovered serial ports:")
	for _, p := range ports {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", p.Name)
		if p.IsUSB {
			fmt.Fprintf(cmd.ErrOrStderr(), "     USB ID      %s:%s\n", p.VID, p.PID)
			fmt.Fprintf(cmd.ErrOrStderr(), "     USB serial  %s\n", p.SerialNumber)
		}
	}
}

// formatResult renders one transaction line:
//
//	0xC1 || 8 || 11 22 33 44 55 66 77 88 || cs=0x9A
func formatResult(id byte, data []byte, checksum byte, err error) string {
	head := yellow("0x%02X", id) + " || " + fmt.Sprintf("%d", len(data)) + " || "
	body := fmt.Sprintf("%-23s", hexString(data))

	if err != nil {
		return head + body + " || " + red("%v", err)
	}

	return head + green("%s", body) + " || " + cyan("cs=0x%02X", checksum)
}
