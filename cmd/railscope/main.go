package main

import (
	"github.com/railscope/railscope/internal/cli"
)

func main() {
	cli.Execute()
}
