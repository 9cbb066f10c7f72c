package main

import "github.com/OpenTraceLab/OpenTraceLattice/cmd/otl/cmd"

func main() {
	cmd.Execute()
}
