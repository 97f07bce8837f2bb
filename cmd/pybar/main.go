// Command pybar drives lemonbar from a reactive widget tree.
package main

import (
	"os"

	"github.com/Jeropeesee-Bashan/pybar/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
