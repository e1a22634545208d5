package main

import "github.com/breardon2011/mitigationDB/cmd"

func main() {
	cmd.Execute()
}
