package main

import (
	"os"

	"finpipe/bank-csv/cmd/categorize"
	"finpipe/bank-csv/cmd/configcmd"
	"finpipe/bank-csv/cmd/preprocess"
	"finpipe/bank-csv/cmd/root"
)

func init() {
	root.Cmd.AddCommand(preprocess.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(configcmd.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
