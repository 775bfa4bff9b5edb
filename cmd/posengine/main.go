package main

import "github.com/dshills/posengine/cmd/posengine/commands"

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	commands.Execute(version, buildTime)
}
