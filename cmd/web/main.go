package main

import "resumecraft_backend/internal/app"

func main() {
	app.Run()
}
