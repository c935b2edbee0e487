package main

import "github.com/gitpulse/gitpulse/cmd"

func main() {
	cmd.Execute()
}
