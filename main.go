package main

import "github.com/Norgate-AV/xcb/cmd"

func main() {
	cmd.Execute()
}
