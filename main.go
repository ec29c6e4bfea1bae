package main

import "github.com/Abcdabansu666/TimeSheet/cmd"

func main() {
	cmd.Execute()
}
