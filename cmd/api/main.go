// Package main is the entry point for the Roster API server.
package main

func main() {
	Execute()
}
