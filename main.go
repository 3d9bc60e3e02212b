package main

import "siteprov/cmd"

func main() {
	cmd.Execute()
}
