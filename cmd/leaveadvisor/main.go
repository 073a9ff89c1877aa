package main

import "leaveadvisor/internal/app/cli"

func main() {
	cli.Execute()
}
