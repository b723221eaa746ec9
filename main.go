package main

import "github.com/bnema/modctl/cmd"

func main() {
	cmd.Execute()
}
