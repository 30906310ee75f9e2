package main

import "github.com/peshal-hash/activepieces/api/cli"

func main() {
	cli.Execute()
}
