// File: medibot/cmd/medibot/main.go
package main

func main() {
	Execute()
}
