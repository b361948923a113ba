// Package diag carries the module's diagnostic printing. It deliberately
// stays a thin fmt.Printf wrapper, matching the bare fmt.Printf/Println
// logging style of cmd/1D.go and cmd/2D.go rather than pulling in a
// structured-logging dependency.
package diag

import "fmt"

// Verbose gates Printf/Println output module-wide.
var Verbose bool

func Printf(format string, args ...interface{}) {
	if Verbose {
		fmt.Printf(format, args...)
	}
}

func Println(args ...interface{}) {
	if Verbose {
		fmt.Println(args...)
	}
}
