package main

import (
	"github.com/tuist/podqueue/cmd"
)

func main() {
	cmd.Execute()
}
