package main

import "github.com/dcalliari/appe/cmd"

func main() {
	cmd.Execute()
}
