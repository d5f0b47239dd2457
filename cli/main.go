/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for loanzaar-cli
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cli/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"github.com/Vivekray898/loanzaar-server/cli/cmd"
)

func main() {
	cmd.Execute()
}
