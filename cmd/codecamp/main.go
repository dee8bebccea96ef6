package main

import "github.com/coreapi/codecamp/cmd"

func main() {
	cmd.Execute()
}
