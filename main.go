package main

import (
	"fmt"
	"os"

	"github.com/sahilchouksey/scholarhub/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		fmt.Fprintln(os.Stderr, "scholarhub:", err)
		os.Exit(1)
	}
}
