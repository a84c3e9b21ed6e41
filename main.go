package main

import "github.com/papapumpkin/syzygy/cmd"

func main() {
	cmd.Execute()
}
