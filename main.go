package main

import "github.com/renamarr/renamarr/internal/cmd"

func main() {
	cmd.Execute()
}
