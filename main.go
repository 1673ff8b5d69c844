package main

import "github.com/kaminglui/circuit-sim/cmd"

func main() {
	cmd.Execute()
}
