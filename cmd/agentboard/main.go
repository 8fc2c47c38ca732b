package main

import "github.com/emiliopalmerini/agentboard/internal/cli"

func main() {
	cli.Execute()
}
