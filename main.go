package main

import "github.com/dh1tw/soundmeter/cmd"

func main() {
	cmd.Execute()
}
