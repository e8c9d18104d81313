package main // Entry point package

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
