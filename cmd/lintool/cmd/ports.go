package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-lin/serialport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.ListPorts()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range ports {
			if p.IsUSB {
				fmt.Fprintf(out, "%s\t%s:%s\t%s\t%s\n", yellow("%s", p.Name), p.VID, p.PID, p.SerialNumber, p.Product)
				continue
			}
			fmt.Fprintln(out, yellow("%s", p.Name))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
