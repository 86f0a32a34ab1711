package main

import "position-tally/cmd"

func main() {
	cmd.Execute()
}
