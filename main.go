package main

import "github.com/pders01/casewatch/cmd"

func main() {
	cmd.Execute()
}
