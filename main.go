package main

import "github.com/losb/stackcheck/cmd/stackcheck"

func main() {
	stackcheck.Execute()
}
