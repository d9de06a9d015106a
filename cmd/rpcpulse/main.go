package main

import "github.com/vietddude/rpcpulse/internal/cli"

func main() {
	cli.Execute()
}
