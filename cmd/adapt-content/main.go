package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/taylortom/adapt-authoring-content/pkg/adaptcontent"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := adaptcontent.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
