package main

import (
	"github.com/shhawkins/chord-wheel-writer/cmd"
)

func main() {
	cmd.Execute()
}
