package main

import "libredit/cmd/libredit-cli/cmd"

func main() {
	cmd.Execute()
}
