package main

import (
	"github.com/doualaexpress/deligate/cmd"
)

func main() {
	cmd.Execute()
}
