package main

import (
	"os"

	"github.com/mindcare/mindcare-server/mindcareservice"
)

func main() {
	if err := mindcareservice.Run(); err != nil {
		os.Exit(1)
	}
}
