package main

import "ridelog/internal/cli"

func main() {
	cli.Execute()
}
