package main

import "github.com/emberhollow/hearth/cmd/hearthctl/cmd"

func main() {
	cmd.Execute()
}
