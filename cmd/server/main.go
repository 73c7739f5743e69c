package main

import "github.com/iliyamo/recipe-sharing-api/cmd/server/commands"

func main() {
	commands.Execute()
}
