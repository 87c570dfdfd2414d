package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}
	switch args[1] {
	case "submit":
		return runSubmit(args[2:])
	case "drain":
		return runDrain(args[2:])
	case "pending":
		return runPending(args[2:])
	}
	usage(args)
	return 1
}

func usage(args []string) {
	name := "veritas"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s submit --in <file> --media-kind <image|audio|video|document> --submitter <id> [--id <id>] [--offline] [--queue <path>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s drain [--queue <path>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s pending [--queue <path>]\n", name)
}

func main() {
	os.Exit(run(os.Args))
}
