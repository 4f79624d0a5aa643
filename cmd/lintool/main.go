package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/arloliu/go-lin/cmd/lintool/cmd"
	"github.com/arloliu/go-lin/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, os.Interrupt)
	go func() {
		s := <-quitChan
		logger.Info("lintool: exiting", "signal", s.String())
		cancel()
		// A transceiver stuck in a delay still finishes within a frame slot.
		<-time.After(5 * time.Second)
		logger.Fatal("lintool: took too long to shut down, forcefully exiting")
	}()

	code := cmd.Execute(ctx)
	cancel()
	os.Exit(code)
}
