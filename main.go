package main

import "conference-clipper/cmd"

func main() {
	cmd.Execute()
}
