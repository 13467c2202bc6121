package main

import "github.com/gysagsohn/game-tracker-server/internal/cli"

func main() {
	cli.Execute()
}
