package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/doeshing/gpa/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.Options{Verbose: isVerbose()})
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	code := 1
	if errors.Is(err, cli.ErrRunHadFailures) {
		code = 2
	}
	stop()
	os.Exit(code)
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("GPA_DEBUG"), "1") || strings.EqualFold(os.Getenv("GPA_DEBUG"), "true")
}
