package main

import "github.com/stackvista/esconfig/cmd"

func main() {
	cmd.Execute()
}
