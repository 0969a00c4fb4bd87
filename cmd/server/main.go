package main

import "github.com/mmynk/memoria/internal/cli"

func main() {
	cli.Execute()
}
