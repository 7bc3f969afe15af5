// Command nativevideo-host runs the video player plugin behind an HTTP
// host with a simulated media engine.
package main

import (
	"os"

	"github.com/go-drift/nativevideo/cmd/nativevideo-host/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
