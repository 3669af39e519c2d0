package main

import "github.com/mselser95/sportsbook-boot/cmd"

func main() {
	cmd.Execute()
}
