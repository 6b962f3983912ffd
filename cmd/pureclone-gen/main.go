// Command pureclone-gen derives PureClone methods. It is meant to run under
// go generate:
//
//	//go:generate go run github.com/on-the-ground/clone_cell_go/cmd/pureclone-gen
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/on-the-ground/clone_cell_go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		cli.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
