// Command playerctl manages player classes and players.
package main

import "github.com/mesh-intelligence/player/internal/cli"

func main() {
	cli.Execute()
}
