// Command pixelperfect optimizes images from the command line.
//
// Usage:
//
//	pixelperfect optimize [flags] <input> [output]
//	pixelperfect info <input>
//	pixelperfect version
//
// Examples:
//
//	pixelperfect optimize photo.jpg
//	pixelperfect optimize -q 60 --max-width 1920 photo.jpg small.jpg
//	pixelperfect optimize -f png screenshot.bmp
//	pixelperfect optimize -f svg --max-width 512 logo.png
//
// Settings are read from built-in defaults, then the --config YAML file, then
// PIXELPERFECT_* environment variables (a .env file in the working directory
// is loaded first), then explicitly set flags.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
