// dinectl is a terminal client for the restaurant management platform.
// It signs in against the backend, keeps the session in durable local
// storage, and reads restaurant resources with the session's bearer
// token.
package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
