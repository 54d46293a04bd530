package main

import (
	"log"

	"github.com/thariqabe666/finalproj-group-2/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
