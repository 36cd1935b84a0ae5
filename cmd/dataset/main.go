package main

import (
	"fmt"
	"os"
)

func main() {
	root, a := newRootCommand()
	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
