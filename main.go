package main

import (
	"fmt"
	"os"

	"ledgerline/bankimport/cmd/importcmd"
	"ledgerline/bankimport/cmd/root"
	"ledgerline/bankimport/cmd/validate"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
