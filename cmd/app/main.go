package main

import (
	"WinGoApi/internal/app"
)

func main() {
	app.Start()
}
