package main

import (
	"os"

	"blogapi/service"
)

var osExit = os.Exit

func main() {
	osExit(run(os.Args[1:]))
}

func run(args []string) int {
	return service.NewCLI().HandleCommand(args)
}
