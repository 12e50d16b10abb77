package main

import (
	"log"

	"github.com/vetworks/vetmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
