package main

import "github.com/dojosmash/dojo-smash/internal/cli"

func main() {
	cli.Execute()
}
