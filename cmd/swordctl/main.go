package main

import "github.com/mcoot/swordgame-go/internal/cli"

func main() {
	cli.Execute()
}
