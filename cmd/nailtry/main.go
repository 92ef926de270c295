package main

import (
	"github.com/geuryroustand/nail-design-try-on/cmd/nailtry/cmd"
)

func main() {
	cmd.Execute()
}
