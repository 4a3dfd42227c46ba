package main

import "github.com/papapumpkin/idlecore/cmd"

func main() {
	cmd.Execute()
}
