package main

import "github.com/nefumc/pgrds/cmd"

func main() {
	cmd.Execute()
}
