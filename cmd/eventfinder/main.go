package main

import "github.com/couchcryptid/event-finder/cmd/eventfinder/command"

func main() {
	command.Execute()
}
