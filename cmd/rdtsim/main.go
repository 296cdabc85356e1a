package main

import "github.com/sarchlab/rdtsim/cmd/rdtsim/cmd"

func main() {
	cmd.Execute()
}
