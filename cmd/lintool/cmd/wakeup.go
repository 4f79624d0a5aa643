package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-lin/lin"
)

const flagDuration = "duration"

var wakeupCmd = &cobra.Command{
	Use:   "wakeup",
	Short: "Send a wakeup pulse",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := timingProfile(cmd)
		if err != nil {
			return err
		}

		d, _ := cmd.Flags().GetDuration(flagDuration)
		if profile.Wakeup, err = wakeupDuration(d); err != nil {
			return err
		}

		b, err := openBus(cmd, profile)
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.tr.SendWakeup(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), green("wakeup sent (%s)", profile.Wakeup))

		return nil
	},
}

// wakeupDuration converts d into a wakeup policy in [250µs, 5ms].
func wakeupDuration(d time.Duration) (lin.WakeupDuration, error) {
	minimum := time.Duration(lin.Minimum250Microseconds().DurationNs())
	if d < minimum || d > lin.MaxWakeupDurationNs {
		return lin.WakeupDuration{}, fmt.Errorf("wakeup duration %v out of range [%v, %v]",
			d, minimum, time.Duration(lin.MaxWakeupDurationNs))
	}

	return lin.Minimum250MicrosecondsPlus(uint32((d - minimum) / time.Microsecond)), nil
}

func init() {
	wakeupCmd.Flags().Duration(flagDuration, 250*time.Microsecond, "wakeup pulse length (250µs to 5ms)")
	rootCmd.AddCommand(wakeupCmd)
}
