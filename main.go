package main

import "github.com/sitefoto/sitefoto/cmd"

func main() {
	cmd.Execute()
}
