package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/mcp2003a"
)

const flagRetries = "retries"

var readCmd = &cobra.Command{
	Use:   "read <id> <len>",
	Short: "Send a header and read the slave response",
	Long: `Send a break and [0x55, id], then parse len data bytes and a checksum
from the echoed stream.

With --model the received checksum is verified; a mismatch counts as a
failed attempt.`,
	Example: `  lintool -p /dev/ttyUSB0 read 0xC1 8
  lintool -p /dev/ttyUSB0 read C1 8 --retries 3 --model enhanced`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseByte(args[0])
		if err != nil {
			return err
		}
		n, err := parseLength(args[1])
		if err != nil {
			return err
		}

		f := cmd.Flags()
		retries, _ := f.GetUint(flagRetries)

		var verify func(data []byte, checksum byte) error
		if f.Changed(flagModel) {
			name, _ := f.GetString(flagModel)
			model, err := lin.ParseChecksumModel(name)
			if err != nil {
				return err
			}
			verify = func(data []byte, checksum byte) error {
				return model.Verify(id, data, checksum)
			}
		}

		profile, err := timingProfile(cmd)
		if err != nil {
			return err
		}
		b, err := openBus(cmd, profile)
		if err != nil {
			return err
		}
		defer b.Close()

		out := cmd.OutOrStdout()
		buf := make([]byte, n)
		var checksum byte

		err = retry.Do(
			func() error {
				var err error
				checksum, err = b.tr.ReadFrame(id, buf)
				if err == nil && verify != nil {
					err = verify(buf, checksum)
				}

				return err
			},
			retry.Context(cmd.Context()),
			retry.Attempts(retries+1),
			retry.Delay(time.Duration(profile.InterFrameSpaceNs())),
			retry.DelayType(retry.FixedDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				var respErr *mcp2003a.ResponseError
				return errors.As(err, &respErr) || errors.Is(err, lin.ErrChecksumMismatch)
			}),
			retry.OnRetry(func(attempt uint, err error) {
				fmt.Fprintln(cmd.ErrOrStderr(), red("attempt %d: %v", attempt+1, err))
			}),
		)
		if err != nil {
			received := 0
			var respErr *mcp2003a.ResponseError
			switch {
			case errors.As(err, &respErr):
				received = respErr.Received
			case errors.Is(err, lin.ErrChecksumMismatch):
				received = n
			}
			fmt.Fprintln(out, formatResult(id, buf[:received], checksum, err))

			return err
		}

		fmt.Fprintln(out, formatResult(id, buf, checksum, nil))

		return nil
	},
}

func init() {
	readCmd.Flags().Uint(flagRetries, 0, "retries on a missing or incomplete response")
	readCmd.Flags().String(flagModel, "enhanced", "verify the checksum with this model (classic, enhanced)")
	rootCmd.AddCommand(readCmd)
}
