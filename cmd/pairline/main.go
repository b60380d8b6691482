package main

import (
	"github.com/pairline/pairline/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init()
	Execute()
}
