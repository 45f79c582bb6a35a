package main

import (
	"github.com/NikhilKartha5/ai-journal/internal/client/cli"
)

func main() {
	cli.Execute()
}
