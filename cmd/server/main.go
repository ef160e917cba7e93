package main

import "perfeval/internal/app/server"

func main() {
	server.Run()
}
