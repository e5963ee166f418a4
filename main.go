package main

import "tversky-reconcile/cmd"

func main() {
	cmd.Execute()
}
