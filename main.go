package main

import "manifest-reconciler/cmd"

func main() {
	cmd.Execute()
}
