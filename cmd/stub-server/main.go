package main

import (
	"context"
	"log"

	stubapp "github.com/thirty33/foodshop-go/internal/app/stub"
)

func main() {
	if err := stubapp.Run(context.Background()); err != nil {
		log.Fatalf("stub backend failed: %v", err)
	}
}
