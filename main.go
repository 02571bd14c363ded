package main

import "github.com/playit-manager/playit-manager/cmd/playit-manager/commands"

func main() {
	commands.Execute()
}
