// The main package for the recipepress executable.
package main

import (
	"github.com/ebrandel/recipepress/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
