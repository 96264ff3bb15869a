package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// promptConfirm implements cpengine.Confirm against the controlling
// terminal. No corpus example implements interactive y/n prompting; a
// single bufio.Scanner over os.Stdin is the smallest thing that works, and
// pulling in a full TUI library for one yes/no question would be overkill.
func promptConfirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
