package main

import "authmcp/cmd"

func main() {
	cmd.Execute()
}
