package main

import "github.com/kralicky/nestgen/cmd"

func main() {
	cmd.Execute()
}
