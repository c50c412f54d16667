package main

import (
	"github.com/mcoot/codebreaker/internal/cli"
)

func main() {
	cli.Execute()
}
