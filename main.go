package main

import "github.com/stepwise-run/stepwise/cmd"

func main() {
	cmd.Execute()
}
