package main

import (
	"github.com/podscript/podscript-cli/cli"
)

func main() {
	cli.Execute()
}
