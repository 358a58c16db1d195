/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command mediacrush inspects the MediaCrush object store and runs media
// tools under the configured deadline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
