package main

import "github.com/bmtlab/each/cmd"

func main() {
	cmd.Execute()
}
