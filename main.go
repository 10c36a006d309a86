package main

import (
	"github.com/masmgr/codetracker-go/cmd"
)

func main() {
	cmd.Run()
}
