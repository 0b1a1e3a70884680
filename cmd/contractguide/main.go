package main

import "contractguide/internal/cli"

func main() {
	cli.Execute()
}
