package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/langbridge-backend/internal/app"
	"github.com/yungbote/langbridge-backend/internal/cli"
	"github.com/yungbote/langbridge-backend/internal/modules/curation"
	"github.com/yungbote/langbridge-backend/internal/platform/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer a.Log.Sync()

	root := cli.NewRootCmd(&cli.App{
		Curator: a.Pipeline,
		Pathway: curation.Pathway,
		Serve:   a.Run,
	})
	return root.ExecuteContext(ctx)
}
