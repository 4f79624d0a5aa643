package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/go-lin/lin"
	"github.com/arloliu/go-lin/poller"
)

const (
	flagRead     = "read"
	flagSend     = "send"
	flagInterval = "interval"
	flagVerify   = "verify"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run a schedule of frames until interrupted",
	Long: `Run the given publish and subscribe slots in order, forever, printing
every result. Publish checksums are computed with --model; subscribe
responses are verified with it when --verify is set.`,
	Example: `  lintool -p /dev/ttyUSB0 poll --send 0x80:00F00A0000000008 --read 0xC1:8 --interval 500ms`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := scheduleEntries(cmd)
		if err != nil {
			return err
		}

		f := cmd.Flags()
		interval, _ := f.GetDuration(flagInterval)
		retries, _ := f.GetInt(flagRetries)
		verify, _ := f.GetBool(flagVerify)

		opts := []poller.Option{
			poller.WithInterval(interval),
			poller.WithRetries(retries),
		}
		if verify {
			model, err := checksumModel(cmd)
			if err != nil {
				return err
			}
			opts = append(opts, poller.WithChecksumModel(model))
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

		return runSchedule(cmd, b, entries, opts)
	},
}

// runSchedule runs the poller on one goroutine and prints results from
// another until the command context is cancelled.
func runSchedule(cmd *cobra.Command, b *bus, entries []poller.Entry, opts []poller.Option) error {
	errg, ctx := errgroup.WithContext(cmd.Context())
	results := make(chan poller.Result, 64)

	opts = append(opts, poller.WithResultHandler(func(r poller.Result) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	}))

	p, err := poller.New(b.tr, entries, opts...)
	if err != nil {
		return err
	}

	errg.Go(func() error {
		defer close(results)

		err := p.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})

	errg.Go(func() error {
		out := cmd.OutOrStdout()
		for r := range results {
			fmt.Fprintf(out, "%s %-10s %s\n",
				r.At.Format("15:04:05.000"),
				r.Entry.Name,
				formatResult(r.Entry.ID, r.Data, r.Checksum, r.Err),
			)
		}

		return nil
	})

	if err := errg.Wait(); err != nil {
		return err
	}

	m := b.tr.Metrics()
	fmt.Fprintf(cmd.ErrOrStderr(), "frames sent=%d received=%d no-response=%d partial=%d resyncs=%d\n",
		m.FrameSendCount.Load(),
		m.FrameRecvCount.Load(),
		m.NoResponseCount.Load(),
		m.PartialResponseCount.Load(),
		m.ResyncCount.Load(),
	)

	return nil
}

// scheduleEntries builds the poller schedule from --send and --read, sends
// first.
func scheduleEntries(cmd *cobra.Command) ([]poller.Entry, error) {
	f := cmd.Flags()
	sends, _ := f.GetStringArray(flagSend)
	reads, _ := f.GetStringArray(flagRead)

	if len(sends)+len(reads) == 0 {
		return nil, errors.New("schedule is empty, use --send and/or --read")
	}

	model, err := checksumModel(cmd)
	if err != nil {
		return nil, err
	}

	entries := make([]poller.Entry, 0, len(sends)+len(reads))
	for _, s := range sends {
		id, data, err := parseSendSlot(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, poller.PublishEntry(fmt.Sprintf("send-%02X", id), id, data, model))
	}
	for _, s := range reads {
		id, n, err := parseReadSlot(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, poller.SubscribeEntry(fmt.Sprintf("read-%02X", id), id, n))
	}

	return entries, nil
}

func checksumModel(cmd *cobra.Command) (lin.ChecksumModel, error) {
	name, _ := cmd.Flags().GetString(flagModel)
	return lin.ParseChecksumModel(name)
}

func init() {
	addPollFlags(pollCmd.Flags())
	rootCmd.AddCommand(pollCmd)
}

func addPollFlags(pf *pflag.FlagSet) {
	pf.StringArray(flagSend, nil, "publish slot id:data, repeatable")
	pf.StringArray(flagRead, nil, "subscribe slot id:len, repeatable")
	pf.Duration(flagInterval, poller.DefaultInterval, "gap after every slot")
	pf.Int(flagRetries, 0, "retries per subscribe slot on a missing or incomplete response")
	pf.String(flagModel, "enhanced", "checksum model (classic, enhanced)")
	pf.Bool(flagVerify, false, "verify subscribe checksums")
}
