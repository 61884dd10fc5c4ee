// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Bearcat - Uniden BC75XLT programming tool
//
// A CLI tool for reading, programming and checking the channel memory of
// Uniden Bearcat BC75XLT and UBC75XLT scanners over the serial cable.

package main

import (
	"os"

	"github.com/Thermoquad/bearcat/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
