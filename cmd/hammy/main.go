package main

import (
	"go-hammy-upload/cmd/hammy/cmd"
	"go-hammy-upload/internal/api"
)

func main() {
	// Ensure all API log file buffers are flushed and files closed on exit
	defer api.CloseAllLoggingTransports()

	cmd.Execute()
}
