package main

import "github.com/develper21/MeterBeacon/cmd"

func main() {
	cmd.Execute()
}
