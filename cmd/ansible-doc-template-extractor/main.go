package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"ansible-doc-template-extractor/internal/app"
	"ansible-doc-template-extractor/internal/pkg/cli"
	"ansible-doc-template-extractor/internal/pkg/logger"
)

var version = "dev"

func main() {
	logger.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, filepath.Base(os.Args[0]), os.Args[1:])
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, prog string, args []string) error {
	cfg, exit, err := cli.Parse(cli.Options{Prog: prog, Version: version}, args, out)
	if err != nil {
		return err
	}
	if exit {
		return nil
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	return app.Run(ctx, *cfg, app.DefaultDeps(*cfg))
}
