package main

import (
	"log"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("eggsweb: %v", err)
	}
}
