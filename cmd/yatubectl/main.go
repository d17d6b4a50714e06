package main

import "github.com/anonto42/yatube/internal/cli"

func main() {
	cli.Execute()
}
