package main

import (
	"github.com/hhkbp2/tpcc"
	"github.com/hhkbp2/tpcc/binding"
)

func main() {
	binding.AddBindings()
	tpcc.Main()
}
