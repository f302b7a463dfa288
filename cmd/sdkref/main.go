package main

import "github.com/mvp-joe/sdkref/internal/cli"

func main() {
	cli.Execute()
}
