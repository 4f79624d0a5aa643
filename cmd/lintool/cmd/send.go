package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-lin/lin"
)

const (
	flagChecksum = "checksum"
	flagModel    = "model"
)

var sendCmd = &cobra.Command{
	Use:   "send <id> <data>",
	Short: "Publish a frame",
	Long: `Send a break followed by [0x55, id, data, checksum].

id is the identifier byte as it goes on the wire, e.g. 0x80 for frame id 0.
The checksum is computed with --model unless --checksum gives it explicitly.`,
	Example: `  lintool -p /dev/ttyUSB0 send 0x80 00F00A0000000008
  lintool -p COM3 send 80 "01 02 03" --checksum 0xF9`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseByte(args[0])
		if err != nil {
			return err
		}
		data, err := parseData(args[1])
		if err != nil {
			return err
		}

		checksum, err := frameChecksum(cmd, id, data)
		if err != nil {
			return err
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

		frame, err := b.tr.SendFrame(id, data, checksum)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), formatResult(id, data, checksum, err))
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatResult(frame.ID(), frame.Data(), frame.Checksum(), nil))

		return nil
	},
}

// frameChecksum returns the explicit --checksum or computes one with --model.
func frameChecksum(cmd *cobra.Command, id byte, data []byte) (byte, error) {
	f := cmd.Flags()

	if f.Changed(flagChecksum) {
		s, _ := f.GetString(flagChecksum)
		return parseByte(s)
	}

	name, _ := f.GetString(flagModel)
	model, err := lin.ParseChecksumModel(name)
	if err != nil {
		return 0, err
	}

	return model.Compute(id, data), nil
}

func init() {
	sendCmd.Flags().String(flagChecksum, "", "checksum byte to send as is")
	sendCmd.Flags().String(flagModel, "enhanced", "checksum model (classic, enhanced)")
	rootCmd.AddCommand(sendCmd)
}
