package main

import (
	"os"

	cenacecmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace"
)

func main() {
	cmd := cenacecmder.NewCenaceCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
