package main

import (
	"github.com/mercadito/catalog/cmd"
)

func main() {
	cmd.Start()
}
