package main

import "github.com/productdevbook/port-manager/cmd"

func main() {
	cmd.Execute()
}
