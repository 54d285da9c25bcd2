package main

import "github.com/raysh454/favicond/internal/cli"

func main() {
	cli.Execute()
}
