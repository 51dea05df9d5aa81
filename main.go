package main

import "github.com/chordforge/chordforge/cmd"

func main() {
	cmd.Execute()
}
