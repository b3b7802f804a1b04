// SPDX-License-Identifier: MIT

// Command gracobatch provides the batch-distance executables and the
// distance engine on the command line.
//
// Invoked under an executable name (a symlink named hellinger, for example) it
// behaves exactly like that executable:
//
//	hellinger <input> <output>
//
// Otherwise it is a cobra CLI:
//
//	gracobatch list
//	gracobatch hellinger <input> <output>
//	gracobatch matrix --metric canberra --normalized input.txt
//	gracobatch gcv --metric hellinger --layout layout.yaml input.txt
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/katalvlaran/graco/batch"
)

func main() {
	if name := filepath.Base(os.Args[0]); slices.Contains(batch.Executables(), name) {
		os.Exit(batch.Run(name, os.Args[1:], os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
