package main

import (
	"github.com/mumoshu/itest/cmd"
)

func main() {
	cmd.MustRun()
}
