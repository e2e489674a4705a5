package main

import "github.com/mj1618/composebox/cmd"

func main() {
	cmd.Execute()
}
