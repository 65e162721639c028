package main

import "github.com/sw33tLie/roomdesk/cmd"

func main() {
	cmd.Execute()
}
