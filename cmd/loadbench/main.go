package main

import (
	"github.com/hhkbp2/loadbench"
	"github.com/hhkbp2/loadbench/binding"
)

func main() {
	binding.AddBindings()
	loadbench.Main()
}
