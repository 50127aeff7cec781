package main

import "github.com/osmcp/osmcp/internal/cli"

func main() {
	cli.Execute()
}
