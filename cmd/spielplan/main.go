package main

import "github.com/pfrederiksen/spielplan/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
