package main

import (
	"github.com/dashreel/dashreel/cmd"
	"github.com/dashreel/dashreel/config"
	"github.com/dashreel/dashreel/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
