package main

import (
	"github.com/pdenton/rosterd/internal/cli"
)

func main() {
	cli.Execute()
}
