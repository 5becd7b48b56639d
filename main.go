package main

import (
	"github.com/findy-network/findy-custodian/cmd"
)

func main() {
	cmd.Execute()
}
