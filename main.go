package main

import (
	"fmt"
	"os"

	cmd "github.com/AnyUserName/encre/cmd/encre"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
